package assert

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/goccy/go-json"

	"github.com/stopnorway/stopnorway/internal/domain"
)

func MinJourneys(minimum int, got int) domain.CheckResult {
	if got >= minimum {
		return domain.CheckResult{
			Name:    "min_journeys",
			Passed:  true,
			Message: fmt.Sprintf("%d journey(s) >= %d", got, minimum),
		}
	}
	return domain.CheckResult{
		Name:    "min_journeys",
		Passed:  false,
		Message: fmt.Sprintf("expected at least %d journey(s), got %d", minimum, got),
	}
}

func MaxJourneys(maximum int, got int) domain.CheckResult {
	if got <= maximum {
		return domain.CheckResult{
			Name:    "max_journeys",
			Passed:  true,
			Message: fmt.Sprintf("%d journey(s) <= %d", got, maximum),
		}
	}
	return domain.CheckResult{
		Name:    "max_journeys",
		Passed:  false,
		Message: fmt.Sprintf("expected at most %d journey(s), got %d", maximum, got),
	}
}

// MaxMinutes fails on the first journey longer than maximum.
func MaxMinutes(maximum int, journeys []domain.JourneyView) domain.CheckResult {
	for _, j := range journeys {
		if j.Minutes > maximum {
			return domain.CheckResult{
				Name:    "max_minutes",
				Passed:  false,
				Message: fmt.Sprintf("journey %s takes %d min, expected <= %d", j.ID, j.Minutes, maximum),
			}
		}
	}
	return domain.CheckResult{
		Name:    "max_minutes",
		Passed:  true,
		Message: fmt.Sprintf("all journeys <= %d min", maximum),
	}
}

// Lines reports the expected public codes missing from the journeys.
func Lines(codes []string, journeys []domain.JourneyView) domain.CheckResult {
	var missing []string
	for _, code := range codes {
		found := slices.ContainsFunc(journeys, func(j domain.JourneyView) bool {
			return strings.EqualFold(j.PublicCode, code)
		})
		if !found {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return domain.CheckResult{
			Name:    "lines",
			Passed:  true,
			Message: fmt.Sprintf("lines %s present", strings.Join(codes, ",")),
		}
	}
	return domain.CheckResult{
		Name:    "lines",
		Passed:  false,
		Message: fmt.Sprintf("missing lines %s", strings.Join(missing, ",")),
	}
}

// Evaluate applies the expectations to a query run. The run is encoded to JSON only if
// JSONPath expectations are present. Results come in a stable order.
func Evaluate(spec domain.Expectations, run domain.QueryRun) []domain.CheckResult {
	out := []domain.CheckResult{}

	if spec.MinJourneys != nil {
		out = append(out, MinJourneys(*spec.MinJourneys, len(run.Journeys)))
	}
	if spec.MaxJourneys != nil {
		out = append(out, MaxJourneys(*spec.MaxJourneys, len(run.Journeys)))
	}
	if spec.MaxMinutes != nil {
		out = append(out, MaxMinutes(*spec.MaxMinutes, run.Journeys))
	}
	if len(spec.Lines) > 0 {
		out = append(out, Lines(spec.Lines, run.Journeys))
	}

	if len(spec.JSONPath) == 0 {
		return out
	}

	exprs := make([]string, 0, len(spec.JSONPath))
	for expr := range spec.JSONPath {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	doc, err := toDocument(run)
	if err != nil {
		for _, expr := range exprs {
			out = append(out, jsonPathChecks(expr, spec.JSONPath[expr], nil,
				fmt.Errorf("query run is not encodable: %v", err))...)
		}
		return out
	}

	for _, expr := range exprs {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, spec.JSONPath[expr], val, getErr)...)
	}
	return out
}

func jsonPathChecks(expr string, a domain.JSONPathExpectation, val any, getErr error) []domain.CheckResult {
	var out []domain.CheckResult
	if a.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if a.Eq != nil {
		out = append(out, checkString("jsonpath.eq", expr, val, getErr, func(s string) (bool, string) {
			if s == *a.Eq {
				return true, fmt.Sprintf("jsonpath %q eq %q", expr, *a.Eq)
			}
			return false, fmt.Sprintf("jsonpath %q: expected %q, got %q", expr, *a.Eq, s)
		}))
	}
	if a.Contains != nil {
		out = append(out, checkString("jsonpath.contains", expr, val, getErr, func(s string) (bool, string) {
			if strings.Contains(s, *a.Contains) {
				return true, fmt.Sprintf("jsonpath %q contains %q", expr, *a.Contains)
			}
			return false, fmt.Sprintf("jsonpath %q: %q does not contain %q", expr, s, *a.Contains)
		}))
	}
	if a.Matches != nil {
		out = append(out, checkMatches(expr, val, getErr, *a.Matches))
	}
	if a.Gt != nil {
		out = append(out, checkNumber("jsonpath.gt", expr, val, getErr, func(f float64) (bool, string) {
			if f > *a.Gt {
				return true, fmt.Sprintf("jsonpath %q: %v > %v", expr, f, *a.Gt)
			}
			return false, fmt.Sprintf("jsonpath %q: expected > %v, got %v", expr, *a.Gt, f)
		}))
	}
	if a.Lt != nil {
		out = append(out, checkNumber("jsonpath.lt", expr, val, getErr, func(f float64) (bool, string) {
			if f < *a.Lt {
				return true, fmt.Sprintf("jsonpath %q: %v < %v", expr, f, *a.Lt)
			}
			return false, fmt.Sprintf("jsonpath %q: expected < %v, got %v", expr, *a.Lt, f)
		}))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("invalid jsonpath %q: %v", expr, getErr),
		}
	}
	if isEmptyJSONPathValue(val) {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected value to exist, got empty", expr),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.exists",
		Passed:  true,
		Message: fmt.Sprintf("jsonpath %q exists", expr),
	}
}

func checkString(name, expr string, val any, getErr error, test func(string) (bool, string)) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{Name: name, Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr)}
	}
	s, err := jsonPathToString(val)
	if err != nil {
		return domain.CheckResult{Name: name, Message: fmt.Sprintf("jsonpath %q: %v", expr, err)}
	}
	ok, msg := test(s)
	return domain.CheckResult{Name: name, Passed: ok, Message: msg}
}

func checkNumber(name, expr string, val any, getErr error, test func(float64) (bool, string)) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{Name: name, Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr)}
	}
	f, err := jsonPathToFloat64(val)
	if err != nil {
		return domain.CheckResult{Name: name, Message: fmt.Sprintf("jsonpath %q: %v", expr, err)}
	}
	ok, msg := test(f)
	return domain.CheckResult{Name: name, Passed: ok, Message: msg}
}

func checkMatches(expr string, val any, getErr error, pattern string) domain.CheckResult {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return domain.CheckResult{
			Name:    "jsonpath.matches",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: invalid regex %q: %v", expr, pattern, err),
		}
	}
	return checkString("jsonpath.matches", expr, val, getErr, func(s string) (bool, string) {
		if re.MatchString(s) {
			return true, fmt.Sprintf("jsonpath %q matches %q", expr, pattern)
		}
		return false, fmt.Sprintf("jsonpath %q: %q does not match %q", expr, s, pattern)
	})
}

func jsonPathToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func jsonPathToFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	case []any:
		// A wildcard expression yields its matches; counting them is the useful number.
		return float64(len(v)), nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", val)
	}
}

// toDocument encodes the run and decodes it into the generic form jsonpath walks.
func toDocument(run domain.QueryRun) (any, error) {
	b, err := json.Marshal(run)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyJSONPathValue(v any) bool {
	if v == nil {
		return true
	}

	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

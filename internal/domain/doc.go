// Package domain contains the configuration, error and result types shared by stopnorway's
// layers.
//
// The domain is transport- and persistence-agnostic: it does not depend on YAML parsing,
// archive formats, or the filesystem. Infra/adapters map into/from these types.
package domain

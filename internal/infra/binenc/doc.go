/*
Package binenc is the compact binary form of NeTEx entities used by the serial database
and the entity store.

# Values

Integers are varints (signed values zig-zag encoded). Strings go through a per-stream
table: the first occurrence is written in full and later ones as a back reference.

	String, first occurrence:
	+-------------+-----------------------+----------------+
	| 0 (uvarint) | byte length (uvarint) | bytes (varlen) |
	+-------------+-----------------------+----------------+

	String, repeated:
	+---------------------------+
	| table index + 1 (uvarint) |
	+---------------------------+

	ID:
	+--------------+-------------------+---------------+----------------+------------------+
	| present (1B) | operator (string) | type (string) | value (string) | version (varint) |
	+--------------+-------------------+---------------+----------------+------------------+

Point lists are a count followed by microdegree pairs, each delta encoded against the
previous point.

	Points:
	+-----------------+-----------------------+-------------------------------+-----+
	| count (uvarint) | lat 1, lon 1 (varint) | dlat 2, dlon 2 (varint,delta) | ... |
	+-----------------+-----------------------+-------------------------------+-----+

# Records

An entity is a one-byte kind tag followed by the fields of that kind. Nested entities
inside a record are written without a tag.
*/
package binenc

// Package utils provides the loose type conversions used when reading dataset configs.
// Config decoders hand back numbers as int, int64 or float64 depending on the file
// format, and these helpers flatten them.
package utils

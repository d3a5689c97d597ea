// Package formats provides parsers for the Wavefront OBJ geometry and MTL
// material formats used by the sandbox model loader.
package formats

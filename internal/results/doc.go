// Package results locates the artifacts the defacing pipeline wrote for a run
// and copies them back next to, or over, the original inputs.
//
// Where the defaced images land depends on the placement mode: "inplace"
// rewrites the staged inputs, the other modes write a mirrored subject tree
// under the output directory. The defacing mask always lives under the
// petdeface derivatives tree.
package results

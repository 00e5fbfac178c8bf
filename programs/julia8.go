package programs

func init() {
	NewProgram(Program{
		Name:         "julia8",
		VertexFile:   DefaultVertexFile,
		FragmentFile: "julia8.frag",
		Constant:     complex(-1.08475, 0),
		Range:        1.2,
		GetPixel:     juliaPixel(8),
	})
}

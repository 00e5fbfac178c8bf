package programs

func init() {
	NewProgram(Program{
		Name:         "julia",
		VertexFile:   DefaultVertexFile,
		FragmentFile: "julia.frag",
		Constant:     complex(-0.835, -0.2321),
		Range:        1.6,
		GetPixel:     juliaPixel(2),
	})
}

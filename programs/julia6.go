package programs

func init() {
	NewProgram(Program{
		Name:         "julia6",
		VertexFile:   DefaultVertexFile,
		FragmentFile: "julia6.frag",
		Constant:     complex(0.50517, 0.35667),
		Range:        1.3,
		GetPixel:     juliaPixel(6),
	})
}

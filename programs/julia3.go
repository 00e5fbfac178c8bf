package programs

func init() {
	NewProgram(Program{
		Name:         "julia3",
		VertexFile:   DefaultVertexFile,
		FragmentFile: "julia3.frag",
		Constant:     complex(0.08394, 0.77007),
		Range:        1.4,
		GetPixel:     juliaPixel(3),
	})
}

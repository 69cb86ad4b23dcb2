package gpt

// testSource is a minimal Source for descriptor tests.
type testSource struct {
	name   string
	path   string
	height int
	width  int
}

func (s testSource) Name() string     { return s.name }
func (s testSource) Path() string     { return s.path }
func (s testSource) Size() (int, int) { return s.height, s.width }

func mustOperator(name string, p *Params) Operator {
	op, err := NewOperator(name, p)
	if err != nil {
		panic(err)
	}
	return op
}

package domain

// Frame is one entry of an execution stack: a node plus its private resumption data.
// Frames are owned by the stack that created them.
type Frame struct {
	Node  Node
	Depth int

	// Data is the node's resumption data. Nil on first entry.
	Data any

	// Child is set only while the node is resumed because a child frame popped.
	Child *Result
}

// FirstEntry reports whether the frame has not stored any resumption data yet.
func (f *Frame) FirstEntry() bool {
	return f.Data == nil
}

// FrameInfo is a read-only view of a frame for snapshots and logs.
type FrameInfo struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	Depth    int           `json:"depth"`
	State    string        `json:"state,omitempty"`
	Branches [][]FrameInfo `json:"branches,omitempty"`
}

// Info builds the FrameInfo of f.
func (f *Frame) Info() FrameInfo {
	d := Describe(f.Node)
	info := FrameInfo{Name: d.Name, Kind: d.Kind, Depth: f.Depth}
	if in, ok := f.Node.(Inspector); ok {
		detail := in.Inspect(f)
		info.State = detail.State
		info.Branches = detail.Branches
	}
	return info
}

package page

// Snapshot is one structured scan of a loaded document. It is collected by a
// single in-page script and treated as immutable for the rest of the job: a
// form that mutates between discovery and fill is not re-inspected.
type Snapshot struct {
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	Containers []Container `json:"containers"`
	Nodes      []Node      `json:"nodes"`
}

// Container is a uniform per-question wrapper element, present on pages that
// repeat one wrapper per logical question (survey builders mostly).
type Container struct {
	Selector string `json:"selector"`
	Heading  string `json:"heading"`
}

// Node describes one candidate form control together with every piece of
// nearby context a discovery strategy might use to label and classify it.
// Selectors are positionally stable (nth-of-type based) because real pages
// frequently lack unique identifiers.
type Node struct {
	Selector    string `json:"selector"`
	Tag         string `json:"tag"`  // lowercased element tag
	Type        string `json:"type"` // lowercased input type attribute
	Role        string `json:"role"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Placeholder string `json:"placeholder"`
	AriaLabel   string `json:"ariaLabel"`
	Value       string `json:"value"`
	Text        string `json:"text"` // trimmed own text, for buttons and label-like nodes

	// Label context resolved in-page so strategies stay DOM-free.
	LabelText      string `json:"labelText"`      // text of an associated label[for=id]
	LabelSelector  string `json:"labelSelector"`  // selector of that label element
	LegendText     string `json:"legendText"`     // enclosing fieldset legend text
	WrapText       string `json:"wrapText"`       // preceding sibling text of a known field wrapper
	PrecedingLabel string `json:"precedingLabel"` // text of a label element immediately before the parent container

	// FieldsetSelector locates the enclosing fieldset, when there is one.
	// Used as the group container selector for native radio/checkbox groups.
	FieldsetSelector string `json:"fieldsetSelector"`

	// Container is the index into Snapshot.Containers of the enclosing
	// question wrapper, or -1.
	Container int `json:"container"`

	// WidgetSelector is the enclosing clickable container for custom widgets
	// (react-select style controls must receive the open click on the
	// container, not the hidden inner input).
	WidgetSelector string `json:"widgetSelector"`

	Visible   bool `json:"visible"`
	Required  bool `json:"required"` // required attribute or aria-required
	Disabled  bool `json:"disabled"`
	ReadOnly  bool `json:"readOnly"`
	Editable  bool `json:"editable"`  // contenteditable
	Multiline bool `json:"multiline"` // textarea

	Options []OptionNode `json:"options"` // native select options
}

// OptionNode is one selectable choice of a native select element.
type OptionNode struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selector string `json:"selector"`
}

// IsTextEntry reports whether the node accepts free text input.
func (n Node) IsTextEntry() bool {
	if n.Multiline || n.Editable {
		return true
	}
	if n.Tag != "input" {
		return false
	}
	switch n.Type {
	case "", "text", "email", "tel", "number", "search", "url", "date", "time", "password":
		return true
	}
	return false
}

// IsChoice reports whether the node is a native radio or checkbox input.
func (n Node) IsChoice() bool {
	return n.Tag == "input" && (n.Type == "radio" || n.Type == "checkbox")
}

package doc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// jsonNode mirrors the JSON content shape used by the browser editor
type jsonNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []jsonNode     `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []jsonMark     `json:"marks,omitempty"`
}

type jsonMark struct {
	Type string `json:"type"`
}

// MarshalJSON encodes the document as {"type":"doc","content":[...]}
func (d *Doc) MarshalJSON() ([]byte, error) {
	root := jsonNode{Type: "doc", Content: make([]jsonNode, 0, len(d.blocks))}
	for _, b := range d.blocks {
		n := jsonNode{Type: string(b.Type), Attrs: map[string]any{}}
		if b.SplitID != "" {
			n.Attrs[AttrSplitID] = b.SplitID
		} else {
			n.Attrs[AttrSplitID] = nil
		}
		if b.Type == Heading {
			n.Attrs[AttrLevel] = b.Level
		}
		for _, r := range b.runs {
			tn := jsonNode{Type: "text", Text: r.Text}
			for _, name := range r.Marks.Names() {
				tn.Marks = append(tn.Marks, jsonMark{Type: name})
			}
			n.Content = append(n.Content, tn)
		}
		root.Content = append(root.Content, n)
	}
	return json.Marshal(root)
}

// UnmarshalJSON decodes the browser editor's JSON content
func (d *Doc) UnmarshalJSON(data []byte) error {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	if root.Type != "doc" {
		return fmt.Errorf("unexpected root node type %q", root.Type)
	}
	blocks := make([]*Block, 0, len(root.Content))
	for i, n := range root.Content {
		b, err := decodeBlock(n)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	*d = *New(blocks...)
	return nil
}

// FromJSON decodes a document
func FromJSON(data []byte) (*Doc, error) {
	d := &Doc{}
	if err := d.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeBlock(n jsonNode) (*Block, error) {
	var t BlockType
	switch n.Type {
	case "paragraph":
		t = Paragraph
	case "heading":
		t = Heading
	default:
		return nil, fmt.Errorf("unsupported node type %q", n.Type)
	}
	runs := make([]Run, 0, len(n.Content))
	for _, c := range n.Content {
		switch c.Type {
		case "text":
		case "hardBreak":
			runs = append(runs, Run{Text: " "})
			continue
		default:
			return nil, fmt.Errorf("unsupported inline node %q", c.Type)
		}
		var marks Marks
		for _, m := range c.Marks {
			if mk, ok := ParseMark(m.Type); ok {
				marks |= mk
			}
		}
		runs = append(runs, Run{Text: c.Text, Marks: marks})
	}
	b := NewBlock(t, runs...)
	if id, ok := n.Attrs[AttrSplitID].(string); ok {
		b.SplitID = id
	}
	if t == Heading {
		switch lv := n.Attrs[AttrLevel].(type) {
		case float64:
			b.Level = clampLevel(int(lv))
		case string:
			if v, err := strconv.Atoi(lv); err == nil {
				b.Level = clampLevel(v)
			}
		}
	}
	return b, nil
}

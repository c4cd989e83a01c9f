// Package tagtree turns a dataset's elements into a typed tree of rows
// for metadata display, filtering, and editing. Sequence-valued
// elements nest their item elements as child rows; pixel data is left
// out of the tree entirely.
package tagtree

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/carbocation/dicomexplorer/dicomfile"
)

const pixelDataGroup = 0x7FE0

// Node is one row of the metadata tree.
type Node struct {
	Tag      tag.Tag
	Name     string
	VR       string
	Value    string
	Children []*Node
}

// TagString renders the node's tag as (gggg,eeee).
func (n *Node) TagString() string {
	return dicomfile.TagString(n.Tag)
}

// Build constructs the display tree for a dataset. Pixel data rows are
// skipped; unknown tags get an empty name.
func Build(ds dicom.Dataset) []*Node {
	nodes := make([]*Node, 0, len(ds.Elements))
	for _, el := range ds.Elements {
		if el.Tag.Group == pixelDataGroup {
			continue
		}
		nodes = append(nodes, buildNode(el))
	}

	return nodes
}

func buildNode(el *dicom.Element) *Node {
	node := &Node{
		Tag: el.Tag,
		VR:  el.RawValueRepresentation,
	}
	if info, err := tag.Find(el.Tag); err == nil {
		node.Name = info.Name
	}

	switch el.Value.ValueType() {
	case dicom.Sequences:
		items := el.Value.GetValue().([]*dicom.SequenceItemValue)
		node.Value = fmt.Sprintf("<sequence of %d items>", len(items))
		for _, item := range items {
			for _, child := range item.GetValue().([]*dicom.Element) {
				if child.Tag.Group == pixelDataGroup {
					continue
				}
				node.Children = append(node.Children, buildNode(child))
			}
		}
	case dicom.Bytes:
		node.Value = "<binary data>"
	default:
		vals, err := dicomfile.StringValues(el)
		if err != nil {
			node.Value = "<binary data>"
			break
		}
		node.Value = strings.Join(vals, "\\")
	}

	return node
}

// Filter returns the top-level nodes whose tag, name, VR, or value
// contains the query, case-insensitively. A matching node keeps all of
// its children. An empty query returns the input unchanged.
func Filter(nodes []*Node, query string) []*Node {
	query = strings.TrimSpace(query)
	if query == "" {
		return nodes
	}
	needle := strings.ToLower(query)

	out := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		if matches(node, needle) {
			out = append(out, node)
		}
	}

	return out
}

func matches(node *Node, lowerQuery string) bool {
	for _, column := range []string{node.TagString(), node.Name, node.VR, node.Value} {
		if strings.Contains(strings.ToLower(column), lowerQuery) {
			return true
		}
	}

	return false
}

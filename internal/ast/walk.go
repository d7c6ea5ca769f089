package ast

// Walk calls visit on node and then recursively on every descendant,
// depth-first in source order. It stops and returns the first error
// visit produces.
func Walk(node Node, visit func(Node) error) error {
	if node == nil {
		return nil
	}
	if err := visit(node); err != nil {
		return err
	}
	for _, child := range node.Children() {
		if err := Walk(child, visit); err != nil {
			return err
		}
	}
	return nil
}

package java

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
)

var errStop = errors.New("stop")

// resolvePackage returns the name in the file's package declaration, or ""
// when there is none. Only the first declaration is consulted.
func resolvePackage(q *queries, root *sitter.Node, src []byte) (string, error) {
	pkg := ""
	err := eachMatch(q.pkg, root, func(c captures) error {
		n := c["package"]
		if n == nil {
			return nil
		}
		s, err := text(n, src)
		if err != nil {
			return err
		}
		pkg = s
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}
	return pkg, nil
}

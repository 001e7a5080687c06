package pipeline

import (
	"io"
	"os"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/template"
)

// readFile reads path, or standard input when path is "-".
func readFile(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeFileNotFound, err, "read %s", path)
	}
	return data, nil
}

// LoadTemplate reads a template document from path ("-" for stdin).
func LoadTemplate(path string) (*template.Template, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	t, err := template.Parse(data)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "parse %s", path)
	}
	return t, nil
}

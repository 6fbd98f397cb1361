package bundle

import (
	"bytes"
	"fmt"
)

const frontmatterOpen = "---\n"

// parseFrontmatter splits a markdown document into its raw YAML
// frontmatter and body; it does not parse the YAML, which its caller
// decodes with gopkg.in/yaml.v3. A document must open with "---\n", and the
// first "\n---" after that closes it. A document with no opening
// delimiter is treated as having empty frontmatter and the whole
// document as body.
func parseFrontmatter(data []byte) (frontmatter []byte, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte(frontmatterOpen)) {
		return nil, data, nil
	}

	rest := data[len(frontmatterOpen):]
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}

	fm := rest[:idx]
	tail := rest[idx+len("\n---"):]
	if len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return fm, tail, nil
}

package editor

import (
	"fmt"
	"path"
	"strings"
)

// DefaultContent returns starter content for a newly created file based
// on its extension. Unknown extensions start empty.
func DefaultContent(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	switch strings.ToLower(path.Ext(name)) {
	case ".jsx", ".tsx":
		return fmt.Sprintf(`import React from 'react';

function %[1]s() {
  return (
    <div>
      <h1>%[1]s</h1>
    </div>
  );
}

export default %[1]s;
`, componentName(base))
	case ".js", ".ts":
		return fmt.Sprintf("// %s\n", name)
	case ".css":
		return fmt.Sprintf("/* %s */\n", name)
	case ".html":
		return `<!DOCTYPE html>
<html>
<head>
  <title>Document</title>
</head>
<body>

</body>
</html>
`
	case ".json":
		return "{}\n"
	case ".md":
		return fmt.Sprintf("# %s\n", base)
	default:
		return ""
	}
}

// scaffoldIndexJS returns the entry point wired to render the first
// component created in a project.
func scaffoldIndexJS(componentFile string) string {
	base := strings.TrimSuffix(componentFile, path.Ext(componentFile))
	name := componentName(base)
	return fmt.Sprintf(`import React from 'react';
import ReactDOM from 'react-dom/client';
import './index.css';
import %[1]s from './%[2]s';

const root = ReactDOM.createRoot(document.getElementById('root'));
root.render(<%[1]s />);
`, name, base)
}

// scaffoldIndexCSS returns the baseline stylesheet for a fresh project.
func scaffoldIndexCSS() string {
	return `body {
  margin: 0;
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
}
`
}

// componentName sanitizes a file base name into an identifier usable as
// a component name.
func componentName(base string) string {
	var b strings.Builder
	upper := true
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z':
			if upper {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	if b.Len() == 0 {
		return "App"
	}
	return b.String()
}

// Package scaffold generates missing starter files for a theme project.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const defaultTemplate = `<!DOCTYPE html>
<html lang="{{@site.locale}}">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{meta_title}}</title>
    <link rel="stylesheet" href="{{asset "built/css/index.css"}}" />
    {{ghost_head}}
</head>
<body class="{{body_class}}">
    {{{body}}}
    <script src="{{asset "built/js/index.js"}}"></script>
    {{ghost_foot}}
</body>
</html>
`

const indexTemplate = `{{!< default}}
<main>
    {{#foreach posts}}
    <article class="{{post_class}}">
        <h2><a href="{{url}}">{{title}}</a></h2>
        <p>{{excerpt words="30"}}</p>
    </article>
    {{/foreach}}
</main>
{{pagination}}
`

const postTemplate = `{{!< default}}
{{#post}}
<article class="{{post_class}}">
    <h1>{{title}}</h1>
    {{content}}
</article>
{{/post}}
`

const indexStylesheet = `:root {
    --color-text: #15171a;
    --color-bg: #fff;
}

body {
    margin: 0;
    color: var(--color-text);
    background: var(--color-bg);
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
}
`

const indexScript = `console.log("theme scripts loaded");
`

const vscodeExtensions = `{
    "recommendations": [
        "TryGhost.ghost"
    ]
}
`

// deployWorkflow mirrors the recommended Ghost theme deploy action.
var deployWorkflow = map[string]any{
	"name": "Deploy Theme",
	"on": map[string]any{
		"push": map[string]any{"branches": []string{"main"}},
	},
	"jobs": map[string]any{
		"deploy": map[string]any{
			"runs-on": "ubuntu-latest",
			"steps": []map[string]any{
				{"uses": "actions/checkout@v4"},
				{
					"uses": "TryGhost/action-deploy-theme@v1",
					"with": map[string]any{
						"api-url": "${{ secrets.GHOST_ADMIN_API_URL }}",
						"api-key": "${{ secrets.GHOST_ADMIN_API_KEY }}",
					},
				},
			},
		},
	},
}

// Run scaffolds missing project files under dir. Each file is skipped
// when it already exists; the script placeholder is skipped entirely
// when a TypeScript entry is already present. Per-file failures are
// logged and the remaining files are still attempted.
func Run(dir string) {
	files := []struct {
		path    string
		content func() ([]byte, error)
	}{
		{"default.hbs", literal(defaultTemplate)},
		{"index.hbs", literal(indexTemplate)},
		{"post.hbs", literal(postTemplate)},
		{filepath.Join("assets", "css", "index.css"), literal(indexStylesheet)},
		{filepath.Join(".vscode", "extensions.json"), literal(vscodeExtensions)},
		{filepath.Join(".github", "workflows", "deploy-theme.yml"), renderWorkflow},
	}

	for _, f := range files {
		writeIfMissing(dir, f.path, f.content)
	}

	// The script placeholder only makes sense when no entry exists in
	// either language.
	tsEntry := filepath.Join(dir, "assets", "js", "index.ts")
	if _, err := os.Stat(tsEntry); err == nil {
		log.Debug().Str("path", tsEntry).Msg("TypeScript entry present, skipping script placeholder")
		return
	}
	writeIfMissing(dir, filepath.Join("assets", "js", "index.js"), literal(indexScript))
}

func literal(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

func renderWorkflow() ([]byte, error) {
	out, err := yaml.Marshal(deployWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to render deploy workflow: %w", err)
	}
	return out, nil
}

func writeIfMissing(dir, rel string, content func() ([]byte, error)) {
	path := filepath.Join(dir, rel)

	if _, err := os.Stat(path); err == nil {
		log.Debug().Str("path", path).Msg("File exists, skipping")
		return
	}

	data, err := content()
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to render scaffold file")
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to create directory")
		return
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write scaffold file")
		return
	}

	log.Info().Str("path", path).Msg("Created")
}

package projenrc

import (
	"fmt"

	"github.com/aws/jsii-runtime-go"
	"github.com/projen/projen-go/projen"
	"github.com/projen/projen-go/projen/javascript"
	"github.com/projen/projen-go/projen/typescript"
)

// Contributes is the "contributes" field of the extension manifest.
type Contributes struct {
	Languages     []Language    `json:"languages"`
	Configuration Configuration `json:"configuration"`
}

// Language registers the AIDL language id with the editor.
type Language struct {
	ID         string   `json:"id"`
	Aliases    []string `json:"aliases"`
	Extensions []string `json:"extensions"`
}

// Configuration represents the settings of the extension. Everything under
// aidllsp.* except server.path is sent as initializationOptions.
type Configuration struct {
	Title      string              `json:"title"`
	Properties map[string]Property `json:"properties"`
}

type Property struct {
	Type                []string `json:"type"`
	Default             any      `json:"default"`
	Items               *Items   `json:"items,omitempty"`
	MarkdownDescription string   `json:"markdownDescription"`
}

type Items struct {
	Type string `json:"type"`
}

// NewVscodeProject declares the VS Code client of the server under
// editors/vscode.
func NewVscodeProject(project projen.Project) typescript.TypeScriptProject {
	vscode := typescript.NewTypeScriptProject(&typescript.TypeScriptProjectOptions{
		DefaultReleaseBranch: jsii.String("main"),
		Outdir:               jsii.String("editors/vscode"),
		SampleCode:           jsii.Bool(false),
		Parent:               project,
		Prettier:             jsii.Bool(true),
		PrettierOptions: &javascript.PrettierOptions{
			Settings: &javascript.PrettierSettings{
				SingleQuote: jsii.Bool(true),
			},
		},
		Description: jsii.String("AIDL language support for Visual Studio Code"),
		Repository:  jsii.String("https://github.com/corymhall/aidllsp"),
		EslintOptions: &javascript.EslintOptions{
			Dirs:     &[]*string{},
			Prettier: jsii.Bool(true),
		},
		Name:       jsii.String("aidllsp-client"),
		AuthorName: jsii.String("corymhall"),
		Deps:       jsii.Strings("vscode-languageclient"),
		DevDeps:    jsii.Strings("@types/vscode", "@vscode/vsce"),
	})

	vscode.Gitignore().AddPatterns(jsii.String("aidllsp"))
	vscode.Package().AddField(jsii.String("main"), "assets/extension/index.js")
	bundle := vscode.Bundler().AddBundle(jsii.String("src/extension.ts"), &javascript.AddBundleOptions{
		Platform:  jsii.String("node"),
		Target:    jsii.String("node18"),
		Externals: jsii.Strings("vscode"),
		Minify:    jsii.Bool(true),
	})

	projen.NewIgnoreFile(vscode, jsii.String(".vscodeignore"), &projen.IgnoreFileOptions{
		IgnorePatterns: jsii.Strings(
			"node_modules",
			"!assets/extension/index.js",
			"!aidllsp",
			"!README.md",
			"!LICENSE",
			"!package.json",
			"**/*",
		),
	})

	vscode.AddScripts(&map[string]*string{
		"vscode:prepublish": jsii.String(fmt.Sprintf("npx projen %s", *bundle.BundleTask.Name())),
	})

	vscode.PackageTask().Reset(jsii.String("npx vsce package --out ../../dist/"), &projen.TaskStepOptions{})
	vscode.Package().AddField(jsii.String("activationEvents"), []string{
		"onLanguage:aidl",
		"workspaceContains:**/*.aidl",
	})
	vscode.Package().AddField(jsii.String("engines"), map[string]any{
		"vscode": "^1.99.1",
	})
	vscode.Package().AddField(jsii.String("contributes"), Contributes{
		Languages: []Language{{
			ID:         "aidl",
			Aliases:    []string{"AIDL", "aidl"},
			Extensions: []string{".aidl"},
		}},
		Configuration: Configuration{
			Title: "AIDL",
			Properties: map[string]Property{
				"aidllsp.server.path": {
					Type:                []string{"string", "null"},
					Default:             nil,
					MarkdownDescription: "Path to the `aidllsp` binary. Leave as `null` to use the binary bundled with the extension.",
				},
				"aidllsp.logLevel": {
					Type:                []string{"string"},
					Default:             "info",
					MarkdownDescription: "Log level of the server. One of `debug`, `info`, `warn` or `error`.",
				},
				"aidllsp.extensions": {
					Type:                []string{"array"},
					Default:             []string{".aidl"},
					Items:               &Items{Type: "string"},
					MarkdownDescription: "File extensions indexed by the server.",
				},
				"aidllsp.exclude": {
					Type:                []string{"array"},
					Default:             []string{".git", "node_modules", "out", "build"},
					Items:               &Items{Type: "string"},
					MarkdownDescription: "Directory names skipped while indexing the workspace.",
				},
			},
		},
	})
	return vscode
}

package main

import (
	"github.com/aws/jsii-runtime-go"
	"github.com/corymhall/aidllsp/projenrc"
	"github.com/projen/projen-go/projen"
	"github.com/projen/projen-go/projen/github"
)

func main() {
	project := projen.NewProject(&projen.ProjectOptions{
		Name: jsii.String("aidllsp"),
		GitIgnoreOptions: &projen.IgnoreFileOptions{
			IgnorePatterns: jsii.Strings("bin", "dist"),
		},
	})
	project.DefaultTask().Exec(jsii.String("go run projenrc.go"), &projen.TaskStepOptions{})
	gh := github.NewGitHub(project, &github.GitHubOptions{})

	vscode := projenrc.NewVscodeProject(project)

	project.TestTask().Exec(jsii.String("go test ./..."), &projen.TaskStepOptions{})
	packageGo := project.AddTask(jsii.String("package:go"), &projen.TaskOptions{
		Steps: &[]*projen.TaskStep{
			{Exec: jsii.String(`go build -o bin/aidllsp -ldflags "-s -w -X github.com/corymhall/aidllsp/server.Version=${VERSION}" ./cmd/aidllsp`)},
			{Exec: jsii.String(`mkdir -p dist && tar -czf "dist/aidllsp-${VERSION}-${GOOS}-${GOARCH}.tar.gz" -C bin aidllsp`)},
		},
	})
	packageVsce := project.AddTask(jsii.String("package:vscode"), &projen.TaskOptions{
		Steps: &[]*projen.TaskStep{
			{Exec: jsii.String(`go build -o ./editors/vscode/aidllsp ./cmd/aidllsp`)},
			{
				Exec: jsii.String("npx projen package"),
				Cwd:  jsii.String("./editors/vscode"),
			},
		},
	})
	project.PackageTask().Spawn(packageGo, &projen.TaskStepOptions{})
	project.PackageTask().Spawn(packageVsce, &projen.TaskStepOptions{})

	projenrc.NewGitHubReleaseWorkflow(project, gh, packageVsce, packageGo)

	project.Synth()
	vscode.Synth()
}

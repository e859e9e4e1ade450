package projenrc

import (
	"github.com/aws/jsii-runtime-go"
	"github.com/projen/projen-go/projen"
	"github.com/projen/projen-go/projen/github"
	"github.com/projen/projen-go/projen/github/workflows"
	"github.com/projen/projen-go/projen/release"
)

const releaseCondition = "needs.release.outputs.tag_exists != 'true' && needs.release.outputs.latest_commit == github.sha"

func Workflows_SetupNode() *workflows.JobStep {
	return &workflows.JobStep{
		Uses: jsii.String("actions/setup-node@v4"),
		With: &map[string]any{
			"node-version": "20.x",
		},
	}
}

func Workflows_SetupGo() *workflows.JobStep {
	return &workflows.JobStep{
		Uses: jsii.String("actions/setup-go@v5"),
		With: &map[string]any{
			"cache-dependency-path": "go.sum",
			"go-version-file":       "go.mod",
		},
	}
}

// artifact describes one packaging job of the release: the task it runs,
// the target matrix and the name of the uploaded files.
type artifact struct {
	task   projen.Task
	setup  []*workflows.JobStep
	env    map[string]string
	runsOn string
	matrix []*map[string]any
	name   string
	path   string
	upload bool
}

// NewGitHubReleaseWorkflow publishes the server binaries and the VS Code
// extension on every release of main.
func NewGitHubReleaseWorkflow(
	project projen.Project,
	gh github.GitHub,
	packageVsceTask projen.Task,
	packageGoTask projen.Task,
) release.Release {
	ghRelease := release.NewRelease(gh, &release.ReleaseOptions{
		PostBuildSteps: &[]*workflows.JobStep{
			{
				Name: jsii.String("Get Version"),
				Id:   jsii.String("get_version"),
				Run:  jsii.String("cat dist/releasetag.txt >> $GITHUB_OUTPUT"),
			},
		},
		ReleaseWorkflowSetupSteps: &[]*workflows.JobStep{
			Workflows_SetupGo(),
			Workflows_SetupNode(),
			{Run: jsii.String("yarn install --check-files --frozen-lockfile")},
		},
		ArtifactsDirectory: jsii.String("dist"),
		Branch:             jsii.String("main"),
		Task:               project.PackageTask(),
		VersionFile:        jsii.String("editors/vscode/package.json"),
	})
	project.TryFindObjectFile(jsii.String(".github/workflows/release.yml")).
		AddOverride(jsii.String("jobs.release.outputs.version"), "${{ steps.get_version.outputs.version }}")

	vsce := artifact{
		task: packageVsceTask,
		setup: []*workflows.JobStep{
			Workflows_SetupNode(),
			{
				Name: jsii.String("Install Deps"),
				Run:  jsii.String("cd editors/vscode && yarn install --check-files --frozen-lockfile"),
			},
		},
		env:    map[string]string{"PLATFORM": "${{ matrix.platform }}", "ARCH": "${{ matrix.arch }}"},
		runsOn: "ubuntu-latest",
		matrix: []*map[string]any{
			{"platform": "linux", "arch": "x64"},
			{"platform": "linux", "arch": "arm64"},
			{"platform": "darwin", "arch": "x64"},
			{"platform": "darwin", "arch": "arm64"},
			{"platform": "win32", "arch": "x64"},
		},
		name:   "aidllsp-client-${{ matrix.platform }}-${{ matrix.arch }}-${{ github.ref_name }}",
		path:   "./dist/aidllsp-client-${{ matrix.platform }}-${{ matrix.arch }}-${{ github.ref_name }}.vsix",
		upload: true,
	}
	binary := artifact{
		task:   packageGoTask,
		setup:  []*workflows.JobStep{Workflows_SetupGo(), Workflows_SetupNode()},
		env:    map[string]string{"GOOS": "${{ matrix.platform }}", "GOARCH": "${{ matrix.arch }}", "CGO_ENABLED": "0"},
		runsOn: "ubuntu-latest",
		matrix: []*map[string]any{
			{"platform": "linux", "arch": "amd64"},
			{"platform": "linux", "arch": "arm64"},
			{"platform": "darwin", "arch": "amd64"},
			{"platform": "darwin", "arch": "arm64"},
			{"platform": "windows", "arch": "amd64"},
		},
		name:   "aidllsp-${{ github.ref_name }}-${{ matrix.platform }}-${{ matrix.arch }}.tar.gz",
		path:   "./dist/aidllsp-${{ github.ref_name }}-${{ matrix.platform }}-${{ matrix.arch }}.tar.gz",
		upload: true,
	}

	ghRelease.AddJobs(&map[string]*workflows.Job{
		"package-vsce":   packageJob(gh, vsce),
		"package-go":     packageJob(gh, binary),
		"update-release": UpdateReleaseJob(),
	})
	return ghRelease
}

// packageJob builds one artifact for every entry of its matrix once the
// release job has tagged a new version.
func packageJob(gh github.GitHub, a artifact) *workflows.Job {
	env := map[string]*string{"VERSION": jsii.String("${{ env.VERSION }}")}
	for k, v := range a.env {
		env[k] = jsii.String(v)
	}
	steps := []*workflows.JobStep{github.WorkflowSteps_Checkout(&github.CheckoutOptions{})}
	steps = append(steps, a.setup...)
	steps = append(steps, &workflows.JobStep{
		Name: jsii.String("Package"),
		Run:  gh.Project().RunTaskCommand(a.task),
		Env:  &env,
	})
	if a.upload {
		steps = append(steps, github.WorkflowSteps_UploadArtifact(&github.UploadArtifactOptions{
			With: &github.UploadArtifactWith{
				Name: jsii.String(a.name),
				Path: jsii.String(a.path),
			},
		}))
	}

	return &workflows.Job{
		If:          jsii.String(releaseCondition),
		Needs:       jsii.Strings("release", "release_github"),
		Permissions: &workflows.JobPermissions{Contents: workflows.JobPermission_WRITE},
		Env:         &map[string]*string{"VERSION": jsii.String("needs.release.outputs.version")},
		RunsOn:      jsii.Strings(a.runsOn),
		Strategy: &workflows.JobStrategy{
			Matrix: &workflows.JobMatrix{Include: &a.matrix},
		},
		Steps: &steps,
	}
}

// UpdateReleaseJob attaches every packaged artifact to the GitHub release.
func UpdateReleaseJob() *workflows.Job {
	return &workflows.Job{
		Permissions: &workflows.JobPermissions{Contents: workflows.JobPermission_WRITE},
		If:          jsii.String(releaseCondition),
		Needs:       jsii.Strings("package-vsce", "package-go", "release"),
		RunsOn:      jsii.Strings("ubuntu-latest"),
		Env: &map[string]*string{
			"VERSION": jsii.String("needs.release.outputs.version"),
		},
		Steps: &[]*workflows.JobStep{
			github.WorkflowSteps_Checkout(&github.CheckoutOptions{}),
			github.WorkflowSteps_DownloadArtifact(&github.DownloadArtifactOptions{
				With: &github.DownloadArtifactWith{
					MergeMultiple: jsii.Bool(true),
					Path:          jsii.String("dist"),
					Pattern:       jsii.String("aidllsp-*"),
				},
			}),
			{
				Name: jsii.String("Upload Release"),
				Run:  jsii.String("gh release upload $VERSION dist/*"),
				Env: &map[string]*string{
					"VERSION": jsii.String("${{ env.VERSION }}"),
				},
			},
		},
	}
}

// Package scaffold generates new .NET repository layouts from embedded
// templates.
//
// Three layouts are supported: a full library repository with solution,
// package metadata and a test project (Library), a minimal repository
// without package metadata (Minimal), and a bare project directory
// holding a single csproj (Project). Targets are never overwritten:
// scaffolding into an existing path fails with status.ErrExists.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/dotnetkit/dotnetkit/pkg/version"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	defaultVersion = "0.1.0"
	defaultLicense = "MIT"
)

//go:embed templates
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Params drive template rendering. The JSON field names follow the
// parameters file format accepted by the init commands.
type Params struct {
	RootFolder        string `json:"RootFolder"`
	SolutionName      string `json:"SolutionName"`
	ProjectName       string `json:"ProjectName"`
	Author            string `json:"Author"`
	Company           string `json:"Company"`
	Description       string `json:"Description"`
	PackageID         string `json:"PackageId"`
	RepositoryURL     string `json:"RepositoryUrl"`
	LicenseExpression string `json:"PackageLicenseExpression"`
	Version           string `json:"Version"`
}

// Normalize fills the fields that can be derived from other fields:
// solution from the root folder, project from the solution, company
// from the author and so on. RootFolder and Author have no derivable
// default and stay as given.
func (p *Params) Normalize() {
	if p.SolutionName == "" {
		p.SolutionName = filepath.Base(filepath.Clean(p.RootFolder))
	}
	if p.ProjectName == "" {
		p.ProjectName = p.SolutionName
	}
	if p.Company == "" {
		p.Company = p.Author
	}
	if p.Description == "" {
		p.Description = p.ProjectName + " library"
	}
	if p.PackageID == "" {
		p.PackageID = p.ProjectName
	}
	if p.LicenseExpression == "" {
		p.LicenseExpression = defaultLicense
	}
	if p.Version == "" {
		p.Version = defaultVersion
	}
}

func (p Params) validate() error {
	var missing []string
	if strings.TrimSpace(p.RootFolder) == "" {
		missing = append(missing, "RootFolder")
	}
	if strings.TrimSpace(p.Author) == "" {
		missing = append(missing, "Author")
	}
	if len(missing) > 0 {
		return errors.New("missing required scaffold parameters: " +
			strings.Join(missing, ", ")).Wrap(status.ErrInvalidParams)
	}
	return nil
}

// LoadParams reads scaffold parameters from a JSON file.
func LoadParams(fs afero.Fs, path string) (Params, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Params{}, errors.New("could not read parameters file " + path).Wrap(err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, errors.New("could not parse parameters file " + path).Wrap(err)
	}
	return p, nil
}

// ExampleParams returns the embedded starter parameters file, ready to
// be edited and fed back through LoadParams.
func ExampleParams() []byte {
	data, err := templateFS.ReadFile("templates/init-parameters.json")
	if err != nil {
		panic(err)
	}
	return data
}

// Result lists what a scaffold operation created.
type Result struct {
	// Root is the directory the layout was created under
	Root string

	// Solution is the path of the generated solution file, when the
	// layout has one
	Solution string

	// Project is the path of the main project file
	Project string

	// Tests is the path of the generated test project, when the layout
	// has one
	Tests string

	// Files lists every file written, in write order
	Files []string
}

// Scaffolder writes repository layouts on a backing file system.
type Scaffolder struct {
	fs      afero.Fs
	log     *zap.Logger
	now     func() time.Time
	newGUID func() string
}

// Option modifies the scaffolder built by New
type Option func(*Scaffolder)

// WithClock overrides the time source used for license years
func WithClock(now func() time.Time) Option {
	return func(s *Scaffolder) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGUIDSource overrides the generator for solution and project GUIDs
func WithGUIDSource(gen func() string) Option {
	return func(s *Scaffolder) {
		if gen != nil {
			s.newGUID = gen
		}
	}
}

// New builds a Scaffolder on the given file system
func New(fs afero.Fs, log *zap.Logger, opts ...Option) *Scaffolder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scaffolder{
		fs:  fs,
		log: log,
		now: time.Now,
		newGUID: func() string {
			return strings.ToUpper(uuid.NewString())
		},
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// renderContext is the data handed to every template. Solution files
// expect GUIDs wrapped in braces, so the GUID fields carry them.
type renderContext struct {
	Params
	Year         int
	ProjectGUID  string
	SolutionGUID string
	ProjectPath  string
}

func (s *Scaffolder) newRenderContext(p Params) renderContext {
	return renderContext{
		Params:       p,
		Year:         s.now().Year(),
		ProjectGUID:  "{" + s.newGUID() + "}",
		SolutionGUID: "{" + s.newGUID() + "}",
	}
}

// Library scaffolds a full library repository: src, docs and tests
// directories, a solution referencing a packable project, a matching
// test project, license, readme and editor settings.
func (s *Scaffolder) Library(p Params) (*Result, error) {
	p.Normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	if _, err := version.Parse(p.Version); err != nil {
		return nil, err
	}

	root := filepath.Clean(p.RootFolder)
	if err := s.ensureAbsent(root); err != nil {
		return nil, err
	}

	ctx := s.newRenderContext(p)
	ctx.ProjectPath = p.ProjectName + ".csproj"

	res := &Result{Root: root}
	if err := s.makeDirs(root, "src", "docs", "tests"); err != nil {
		return nil, err
	}
	if err := s.writeCommon(res, root, ctx); err != nil {
		return nil, err
	}
	if err := s.writeFile(res, filepath.Join(root, "docs", ".gitkeep"), nil); err != nil {
		return nil, err
	}

	res.Project = filepath.Join(root, "src", p.ProjectName+".csproj")
	if err := s.writeRendered(res, res.Project, "project_nuget.tmpl", ctx); err != nil {
		return nil, err
	}
	res.Solution = filepath.Join(root, "src", p.SolutionName+".sln")
	if err := s.writeRendered(res, res.Solution, "solution.tmpl", ctx); err != nil {
		return nil, err
	}
	res.Tests = filepath.Join(root, "tests", p.ProjectName+".Tests.csproj")
	if err := s.writeRendered(res, res.Tests, "project_tests.tmpl", ctx); err != nil {
		return nil, err
	}

	s.log.Info("scaffolded library repository",
		zap.String("root", root),
		zap.String("solution", res.Solution),
		zap.String("project", res.Project),
		zap.Int("files", len(res.Files)),
	)
	return res, nil
}

// Minimal scaffolds a repository without package metadata: same
// directory skeleton as Library, but the project is a plain csproj in
// its own directory under src and no test project is generated.
func (s *Scaffolder) Minimal(p Params) (*Result, error) {
	p.Normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}

	root := filepath.Clean(p.RootFolder)
	if err := s.ensureAbsent(root); err != nil {
		return nil, err
	}

	ctx := s.newRenderContext(p)
	// minimal repos carry no package metadata
	ctx.PackageID = ""
	ctx.RepositoryURL = ""
	ctx.ProjectPath = p.ProjectName + "\\" + p.ProjectName + ".csproj"

	res := &Result{Root: root}
	if err := s.makeDirs(root, "src", "docs", "tests", filepath.Join("src", p.ProjectName)); err != nil {
		return nil, err
	}
	if err := s.writeCommon(res, root, ctx); err != nil {
		return nil, err
	}
	for _, keep := range []string{
		filepath.Join(root, "docs", ".gitkeep"),
		filepath.Join(root, "tests", ".gitkeep"),
	} {
		if err := s.writeFile(res, keep, nil); err != nil {
			return nil, err
		}
	}

	res.Project = filepath.Join(root, "src", p.ProjectName, p.ProjectName+".csproj")
	if err := s.writeRendered(res, res.Project, "project_minimal.tmpl", ctx); err != nil {
		return nil, err
	}
	res.Solution = filepath.Join(root, "src", p.SolutionName+".sln")
	if err := s.writeRendered(res, res.Solution, "solution.tmpl", ctx); err != nil {
		return nil, err
	}

	s.log.Info("scaffolded minimal repository",
		zap.String("root", root),
		zap.String("project", res.Project),
		zap.Int("files", len(res.Files)),
	)
	return res, nil
}

// Project scaffolds a bare project directory holding a single csproj
// named after the directory. With nuget set, the csproj carries the
// full package metadata section with every value left blank, ready to
// be filled in.
func (s *Scaffolder) Project(name string, nuget bool) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("a project name is required").Wrap(status.ErrInvalidParams)
	}

	dir := filepath.Clean(name)
	if err := s.ensureAbsent(dir); err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.New("could not create directory " + dir).Wrap(err)
	}

	tmpl := "project_minimal.tmpl"
	if nuget {
		tmpl = "project_nuget.tmpl"
	}

	res := &Result{Root: dir}
	res.Project = filepath.Join(dir, filepath.Base(dir)+".csproj")
	if err := s.writeRendered(res, res.Project, tmpl, renderContext{}); err != nil {
		return nil, err
	}

	s.log.Info("scaffolded project",
		zap.String("project", res.Project),
		zap.Bool("nuget", nuget),
	)
	return res, nil
}

// writeCommon emits the files shared by the Library and Minimal
// layouts. The readme goes to the repository root and next to the
// sources, so package consumers browsing src see it too.
func (s *Scaffolder) writeCommon(res *Result, root string, ctx renderContext) error {
	rendered := []struct {
		path string
		tmpl string
	}{
		{filepath.Join(root, ".editorconfig"), "editorconfig.tmpl"},
		{filepath.Join(root, ".gitignore"), "gitignore.tmpl"},
		{filepath.Join(root, "LICENSE"), "license.tmpl"},
		{filepath.Join(root, "README.md"), "readme.tmpl"},
		{filepath.Join(root, "src", "README.md"), "readme.tmpl"},
	}
	for _, target := range rendered {
		if err := s.writeRendered(res, target.path, target.tmpl, ctx); err != nil {
			return err
		}
	}
	return s.writeFile(res, filepath.Join(root, ".wakatime-project"), []byte(ctx.ProjectName+"\n"))
}

func (s *Scaffolder) makeDirs(root string, subs ...string) error {
	dirs := []string{root}
	for _, sub := range subs {
		dirs = append(dirs, filepath.Join(root, sub))
	}
	for _, dir := range dirs {
		if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
			return errors.New("could not create directory " + dir).Wrap(err)
		}
	}
	return nil
}

func (s *Scaffolder) ensureAbsent(path string) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return errors.New("could not inspect " + path).Wrap(err)
	}
	if exists {
		return errors.New("target " + path + " exists and will not be overwritten").Wrap(status.ErrExists)
	}
	return nil
}

func (s *Scaffolder) render(name string, ctx renderContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, ctx); err != nil {
		return nil, errors.New("could not render template " + name).Wrap(err)
	}
	return buf.Bytes(), nil
}

func (s *Scaffolder) writeRendered(res *Result, path, tmpl string, ctx renderContext) error {
	data, err := s.render(tmpl, ctx)
	if err != nil {
		return err
	}
	return s.writeFile(res, path, data)
}

func (s *Scaffolder) writeFile(res *Result, path string, data []byte) error {
	if err := afero.WriteFile(s.fs, path, data, filePerm); err != nil {
		return errors.New("could not write " + path).Wrap(err)
	}
	res.Files = append(res.Files, path)
	return nil
}

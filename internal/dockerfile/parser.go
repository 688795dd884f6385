package dockerfile

import (
	"io"
	"os"
	"strings"

	"github.com/distribution/reference"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
	"github.com/moby/buildkit/frontend/dockerfile/shell"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
)

const DockerHubDomain = "docker.io"

var (
	ErrMissingTag          = errors.New("base image is not pinned to a tag")
	ErrDigestPinned        = errors.New("base image is pinned to a digest")
	ErrUnsupportedRegistry = errors.New("only docker hub images are supported")
	ErrInvalidReference    = errors.New("invalid image reference")
)

// BaseImage is an image referenced by a FROM instruction.
type BaseImage struct {
	Dockerfile string
	Line       int

	// Stage is the alias given with "AS", if any.
	Stage string

	// Raw is the reference as written in the Dockerfile, after ARG expansion.
	Raw string

	Domain string
	// Repository is the repository path in the registry, e.g. "library/ubuntu".
	Repository string
	// Name is the familiar image name, e.g. "ubuntu".
	Name string
	Tag  string

	// Err is set when the reference cannot be audited.
	Err error
}

// ParseFile reads the Dockerfile at path and returns its base images.
func ParseFile(path string) ([]BaseImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open the dockerfile")
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse returns the base images of every FROM instruction.
// Build arguments are expanded with the Dockerfile shell rules, including
// "${NAME:-default}" forms. Instructions referring to "scratch", to a
// previous stage or to an undeclared build argument that leaves no usable
// reference are skipped.
func Parse(r io.Reader, path string) ([]BaseImage, error) {
	res, err := parser.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse the dockerfile")
	}

	lex := shell.NewLex(res.EscapeToken)
	args := buildArgs{}
	stages := make(map[string]struct{})
	seenFrom := false

	var images []BaseImage
	for _, node := range res.AST.Children {
		switch strings.ToLower(node.Value) {
		case "arg":
			// Only arguments declared before the first FROM can be used in FROM.
			if !seenFrom {
				args.collect(lex, node)
			}

		case "from":
			seenFrom = true

			if node.Next == nil {
				continue
			}

			word, err := lex.ProcessWordWithMatches(node.Next.Value, args)
			if err != nil {
				zlog.Debug().Err(err).Str("dockerfile", path).Int("line", node.StartLine).Str("image", node.Next.Value).Msg("skipping FROM with a malformed substitution")
				continue
			}
			raw := word.Result

			var stage string
			if as := node.Next.Next; as != nil && strings.EqualFold(as.Value, "as") && as.Next != nil {
				stage = as.Next.Value
			}

			_, isStage := stages[strings.ToLower(raw)]
			if stage != "" {
				stages[strings.ToLower(stage)] = struct{}{}
			}

			if isStage || strings.EqualFold(raw, "scratch") {
				continue
			}

			img := newBaseImage(raw)
			// Undeclared arguments expand to their defaults or to nothing; only
			// a reference broken by them is treated as unresolved.
			if len(word.Unmatched) > 0 && img.Err != nil {
				zlog.Debug().Str("dockerfile", path).Int("line", node.StartLine).Str("image", node.Next.Value).Msg("skipping FROM with an unresolved build argument")
				continue
			}
			img.Dockerfile = path
			img.Line = node.StartLine
			img.Stage = stage

			images = append(images, img)
		}
	}

	return images, nil
}

func newBaseImage(raw string) BaseImage {
	img := BaseImage{Raw: raw}

	named, err := reference.ParseNormalizedNamed(raw)
	if err != nil {
		img.Err = errors.Wrap(ErrInvalidReference, err.Error())
		return img
	}

	img.Domain = reference.Domain(named)
	img.Repository = reference.Path(named)
	img.Name = reference.FamiliarName(named)

	if tagged, ok := named.(reference.Tagged); ok {
		img.Tag = tagged.Tag()
	}

	switch {
	case img.Domain != DockerHubDomain:
		img.Err = ErrUnsupportedRegistry

	case img.Tag == "":
		if _, ok := named.(reference.Digested); ok {
			img.Err = ErrDigestPinned
		} else {
			img.Err = ErrMissingTag
		}
	}

	return img
}

// ParseReference parses an image reference such as "ubuntu:16.04" the same
// way references in FROM instructions are parsed.
func ParseReference(raw string) BaseImage {
	return newBaseImage(raw)
}

// buildArgs are the build arguments declared before the first FROM.
type buildArgs map[string]string

func (a buildArgs) Get(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

func (a buildArgs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}

	return keys
}

// collect declares the arguments of an ARG instruction. Defaults may refer
// to previously declared arguments. Arguments without a default stay undeclared.
func (a buildArgs) collect(lex *shell.Lex, node *parser.Node) {
	for n := node.Next; n != nil; n = n.Next {
		name, value, found := strings.Cut(n.Value, "=")
		if !found {
			continue
		}

		expanded, _, err := lex.ProcessWord(value, a)
		if err != nil {
			continue
		}

		a[name] = expanded
	}
}

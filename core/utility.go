package core

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devblok/korender/device"
	"github.com/devblok/korender/utility/kar"
	"golang.org/x/exp/mmap"
)

const shaderSuffix = ".wgsl"

// ErrIncompleteShaderSet is returned when a shader name has only one of
// its vertex and fragment sources.
var ErrIncompleteShaderSet = errors.New("shader set needs a vertex and a fragment source")

// ShaderSet is the source of one program.
type ShaderSet struct {
	Name     string
	Vertex   device.Source
	Fragment device.Source
}

// parseShaderName splits a shader file name. It is important that the file
// name does not contain more than two dots, the first is always the name of
// the shader, second is type, and the third one is the .wgsl extension.
func parseShaderName(fileName string) (string, ShaderType) {
	if !strings.HasSuffix(fileName, shaderSuffix) {
		return "", UnknownShaderType
	}
	nodes := strings.Split(strings.TrimSuffix(fileName, shaderSuffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return "", UnknownShaderType
	}
	switch nodes[1] {
	case "frag":
		return nodes[0], FragmentShaderType
	case "vert":
		return nodes[0], VertexShaderType
	}
	return "", UnknownShaderType
}

type shaderSets map[string]*ShaderSet

func (s shaderSets) add(fileName string, read func() ([]byte, error)) error {
	name, typ := parseShaderName(fileName)
	if typ == UnknownShaderType {
		return nil
	}
	src, err := read()
	if err != nil {
		return err
	}
	set, ok := s[name]
	if !ok {
		set = &ShaderSet{Name: name}
		s[name] = set
	}
	if typ == VertexShaderType {
		set.Vertex = device.Source(src)
	} else {
		set.Fragment = device.Source(src)
	}
	return nil
}

func (s shaderSets) list() ([]ShaderSet, error) {
	var sets []ShaderSet
	for _, set := range s {
		if set.Vertex == "" || set.Fragment == "" {
			return nil, fmt.Errorf("%w: %s", ErrIncompleteShaderSet, set.Name)
		}
		sets = append(sets, *set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

// LoadShaderDirectory walks dir for shader sources and pairs them by name.
// Files not named like shaders are skipped.
func LoadShaderDirectory(dir string) ([]ShaderSet, error) {
	sets := make(shaderSets)
	if err := filepath.Walk(dir, func(p string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		return sets.add(f.Name(), func() ([]byte, error) { return ioutil.ReadFile(p) })
	}); err != nil {
		return nil, err
	}
	return sets.list()
}

// LoadShaderArchive pairs the shader sources stored in a kar archive.
func LoadShaderArchive(ar *kar.Archive) ([]ShaderSet, error) {
	sets := make(shaderSets)
	for _, name := range ar.Names() {
		name := name
		if err := sets.add(path.Base(name), func() ([]byte, error) { return ar.ReadAll(name) }); err != nil {
			return nil, err
		}
	}
	return sets.list()
}

// FindShaderSet returns the set with the given name.
func FindShaderSet(sets []ShaderSet, name string) (ShaderSet, bool) {
	for _, s := range sets {
		if s.Name == name {
			return s, true
		}
	}
	return ShaderSet{}, false
}

// LoadShaders loads the configured shader archive, or the shader directory
// when no archive is set.
func LoadShaders(cfg RendererConfiguration) ([]ShaderSet, error) {
	if cfg.ShaderArchive == "" {
		return LoadShaderDirectory(cfg.ShaderDirectory)
	}
	r, err := mmap.Open(cfg.ShaderArchive)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	ar, err := kar.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.ShaderArchive, err)
	}
	return LoadShaderArchive(ar)
}

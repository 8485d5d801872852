// Command kar creates, lists and extracts kar archives.
//
//	kar create -o shaders.kar [-author name] files...
//	kar list shaders.kar
//	kar extract [-C dir] shaders.kar
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devblok/korender/utility/kar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kar create|list|extract [flags] args...")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = create(os.Args[2:])
	case "list":
		err = list(os.Args[2:])
	case "extract":
		err = extract(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func create(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	out := fs.String("o", "out.kar", "archive to write")
	author := fs.String("author", os.Getenv("USER"), "author stored in the header")
	fs.Parse(args)

	builder, err := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		return err
	}
	defer builder.Close()

	for _, name := range fs.Args() {
		if err := addFile(builder, name); err != nil {
			return err
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	written, err := builder.WriteTo(f)
	if err != nil {
		f.Close()
		return err
	}
	log.WithFields(log.Fields{"archive": *out, "files": len(fs.Args()), "bytes": written}).Info("archive written")
	return f.Close()
}

func addFile(builder *kar.Builder, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return builder.Add(filepath.ToSlash(name), f)
}

func open(args []string) (*mmap.ReaderAt, *kar.Archive, error) {
	if len(args) != 1 {
		usage()
	}
	r, err := mmap.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	ar, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return r, ar, nil
}

func list(args []string) error {
	r, ar, err := open(args)
	if err != nil {
		return err
	}
	defer r.Close()

	h := ar.Header()
	fmt.Printf("author %s, version %d, created %s\n", h.Author, h.Version, time.Unix(h.DateCreated, 0).Format(time.RFC3339))
	for _, e := range h.Index {
		fmt.Printf("%10d %10d %s\n", e.Size, e.CompressedSize, e.Name)
	}
	return nil
}

func extract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	dir := fs.String("C", ".", "directory to extract into")
	fs.Parse(args)

	r, ar, err := open(fs.Args())
	if err != nil {
		return err
	}
	defer r.Close()

	for _, name := range ar.Names() {
		data, err := ar.ReadAll(name)
		if err != nil {
			return err
		}
		dst := filepath.Join(*dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return err
		}
		log.WithField("file", dst).Debug("extracted")
	}
	return nil
}

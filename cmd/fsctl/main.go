package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sir_venger/flatstore/pkg/storageclient"
)

const defaultAddr = "http://localhost:8080"

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: fsctl [-addr URL] [-q] <command> [args]

Commands:
  upload FILE...          upload local files, stored under their base names
  list                    print stored file names
  download NAME [DIR]     download NAME into DIR (default: current directory)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	addr := flag.String("addr", defaultAddr, "server base URL")
	quiet := flag.Bool("q", false, "disable progress output")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []storageclient.Option
	if !*quiet {
		opts = append(opts, storageclient.WithProgress(os.Stderr))
	}
	cli := storageclient.New(opts...)

	if err := run(ctx, cli, *addr, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "fsctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cli storageclient.Client, addr, cmd string, args []string) error {
	switch cmd {
	case "upload":
		if len(args) == 0 {
			return errors.New("upload: no files given")
		}
		for _, path := range args {
			if err := upload(ctx, cli, addr, path); err != nil {
				return fmt.Errorf("upload %s: %w", path, err)
			}
		}
		return nil

	case "list":
		names, err := cli.List(ctx, addr)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil

	case "download":
		if len(args) == 0 {
			return errors.New("download: no file name given")
		}
		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}
		return download(ctx, cli, addr, args[0], dir)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func upload(ctx context.Context, cli storageclient.Client, addr, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return cli.Upload(ctx, addr, filepath.Base(path), f, info.Size())
}

// download пишет во временный файл рядом с целевым и переименовывает его только после успеха.
func download(ctx context.Context, cli storageclient.Client, addr, name, dir string) error {
	body, _, err := cli.Download(ctx, addr, name)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.part")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, filepath.Base(name)))
}

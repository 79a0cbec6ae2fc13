package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyList is returned when a required list file has no entries.
var ErrEmptyList = errors.New("list file has no entries")

// Lists holds the operator-maintained list files.
type Lists struct {
	Subscriptions []string
	Keywords      []string
	Blacklist     []string
	Whitelist     []string
}

// LoadLists reads the list files named in the configuration. Subscriptions and
// keywords are required; a missing blacklist or whitelist means an empty one.
func (c *Config) LoadLists() (Lists, error) {
	var (
		l   Lists
		err error
	)

	if l.Subscriptions, err = ReadList(c.listPath(c.Lists.Subscriptions), true); err != nil {
		return Lists{}, err
	}
	if l.Keywords, err = ReadList(c.listPath(c.Lists.Keywords), true); err != nil {
		return Lists{}, err
	}
	if l.Blacklist, err = ReadList(c.listPath(c.Lists.Blacklist), false); err != nil {
		return Lists{}, err
	}
	if l.Whitelist, err = ReadList(c.listPath(c.Lists.Whitelist), false); err != nil {
		return Lists{}, err
	}

	return l, nil
}

func (c *Config) listPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Lists.Dir, name)
}

// ReadList reads one entry per line. Blank lines and lines starting with '#'
// are ignored. An optional list that does not exist reads as empty.
func ReadList(path string, required bool) ([]string, error) {
	if path == "" {
		if required {
			return nil, fmt.Errorf("list path is required")
		}
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open list %s: %w", path, err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", path, err)
	}

	if required && len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyList)
	}
	return entries, nil
}

package migration

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scan reads every *.sql file at the root of fsys and returns the migrations
// ordered by numeric version.
func Scan(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, NewMigrationError("", ".", "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		migration, err := parseFile(fsys, entry.Name())
		if err != nil {
			return nil, err
		}

		key := normalizeVersion(migration.Version)
		if existing, ok := seen[key]; ok {
			return nil, NewMigrationError(migration.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s", ErrDuplicateVersion, migration.Version, existing, entry.Name()))
		}
		seen[key] = entry.Name()

		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})

	return migrations, nil
}

// ValidateFileName checks the {version}_{description}.sql convention.
func ValidateFileName(name string) error {
	matches := fileNamePattern.FindStringSubmatch(name)
	if len(matches) != 3 {
		return fmt.Errorf("%w: filename '%s' does not match pattern '{version}_{description}.sql'", ErrInvalidMigrationFile, name)
	}
	if _, err := strconv.Atoi(matches[1]); err != nil {
		return fmt.Errorf("%w: version '%s' in filename '%s' is not a valid number", ErrInvalidVersion, matches[1], name)
	}
	return nil
}

func parseFile(fsys fs.FS, name string) (Migration, error) {
	if err := ValidateFileName(name); err != nil {
		return Migration{}, NewMigrationError("", name, "validate filename", err)
	}
	matches := fileNamePattern.FindStringSubmatch(name)
	version := matches[1]

	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Migration{}, NewMigrationError(version, name, "read file", err)
	}
	content := string(raw)
	if len(splitStatements(content)) == 0 {
		return Migration{}, NewMigrationError(version, name, "validate content",
			fmt.Errorf("%w: migration file has no statements", ErrInvalidMigrationFile))
	}

	description := descriptionFromContent(content)
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	return Migration{
		Version:     version,
		Description: description,
		SQL:         content,
		FilePath:    name,
		Checksum:    fmt.Sprintf("%x", sha256.Sum256(raw)),
	}, nil
}

// descriptionFromContent reads a leading "-- Description: ..." comment.
func descriptionFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
		if strings.HasPrefix(line, "-- Description:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "-- Description:"))
		}
	}
	return ""
}

// splitStatements splits on semicolons and drops comment-only fragments.
func splitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}

func normalizeVersion(version string) string {
	if n, err := strconv.Atoi(version); err == nil {
		return strconv.Itoa(n)
	}
	return version
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoomSeed is one room of the seed catalog.
type RoomSeed struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Capacity int    `yaml:"capacity"`
}

type roomSeedFile struct {
	Rooms []RoomSeed `yaml:"rooms"`
}

// LoadRoomSeed reads the YAML room catalog at path. The catalog is either a
// top-level list of rooms or the same list under a "rooms" key:
//
//	rooms:
//	  - name: 회의실 A
//	    location: 3층
//	    capacity: 6
func LoadRoomSeed(path string) ([]RoomSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read room seed: %w", err)
	}
	return ParseRoomSeed(data)
}

// ParseRoomSeed decodes and validates a YAML room catalog.
func ParseRoomSeed(data []byte) ([]RoomSeed, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse room seed: %w", err)
	}

	var file roomSeedFile
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		var err error
		if root.Kind == yaml.SequenceNode {
			err = root.Decode(&file.Rooms)
		} else {
			err = root.Decode(&file)
		}
		if err != nil {
			return nil, fmt.Errorf("parse room seed: %w", err)
		}
	}
	if len(file.Rooms) == 0 {
		return nil, errors.New("room seed contains no rooms")
	}

	seen := make(map[string]struct{}, len(file.Rooms))
	var problems []string
	for i := range file.Rooms {
		room := &file.Rooms[i]
		room.Name = strings.TrimSpace(room.Name)
		room.Location = strings.TrimSpace(room.Location)

		switch {
		case room.Name == "":
			problems = append(problems, fmt.Sprintf("rooms[%d]: name is required", i))
		case room.Capacity <= 0:
			problems = append(problems, fmt.Sprintf("rooms[%d] %q: capacity must be positive", i, room.Name))
		}
		if _, dup := seen[room.Name]; dup && room.Name != "" {
			problems = append(problems, fmt.Sprintf("rooms[%d]: duplicate name %q", i, room.Name))
		}
		seen[room.Name] = struct{}{}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid room seed: %s", strings.Join(problems, "; "))
	}
	return file.Rooms, nil
}

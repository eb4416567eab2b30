package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPasscodeHash         = errors.New("invalid passcode hash format")
	ErrIncompatiblePasscodeVersion = errors.New("incompatible passcode hash version")
	errPasscodeMismatch            = errors.New("passcode mismatch")
)

// Passcode scheme names accepted by PasscodeSchemeByName.
const (
	PasscodeSchemePlain    = "plain"
	PasscodeSchemeArgon2id = "argon2id"
)

// PasscodeScheme controls how reservation passcodes are stored and matched.
type PasscodeScheme interface {
	Name() string
	// Encode returns the value written to storage.
	Encode(passcode string) (string, error)
	// StoredFilter returns the value to match in the store, or nil when the
	// store cannot compare and Matches must be applied to each candidate.
	StoredFilter(passcode string) *string
	Matches(stored, passcode string) bool
}

// PasscodeSchemeByName resolves a configured scheme name.
func PasscodeSchemeByName(name string) (PasscodeScheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PasscodeSchemePlain:
		return PlainPasscodes{}, nil
	case PasscodeSchemeArgon2id:
		return Argon2idPasscodes{Params: DefaultArgon2idParams}, nil
	default:
		return nil, fmt.Errorf("unknown passcode scheme %q", name)
	}
}

// PlainPasscodes stores passcodes verbatim and matches them exactly in the store.
type PlainPasscodes struct{}

func (PlainPasscodes) Name() string { return PasscodeSchemePlain }

func (PlainPasscodes) Encode(passcode string) (string, error) { return passcode, nil }

func (PlainPasscodes) StoredFilter(passcode string) *string { return &passcode }

func (PlainPasscodes) Matches(stored, passcode string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(passcode)) == 1
}

// Argon2idPasscodes stores passcodes as argon2id hashes.
type Argon2idPasscodes struct {
	Params Argon2idParams
}

func (Argon2idPasscodes) Name() string { return PasscodeSchemeArgon2id }

func (a Argon2idPasscodes) Encode(passcode string) (string, error) {
	return CreatePasscodeHash(passcode, a.Params)
}

func (Argon2idPasscodes) StoredFilter(string) *string { return nil }

func (Argon2idPasscodes) Matches(stored, passcode string) bool {
	return VerifyPasscode(stored, passcode) == nil
}

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

func CreatePasscodeHash(passcode string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(passcode), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

func VerifyPasscode(hashed, passcode string) error {
	parts := strings.Split(hashed, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidPasscodeHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return err
	}
	if version != argon2.Version {
		return ErrIncompatiblePasscodeVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return err
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return err
	}
	params.KeyLength = uint32(len(decodedHash))

	comparison := argon2.IDKey([]byte(passcode), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	if subtle.ConstantTimeCompare(decodedHash, comparison) == 1 {
		return nil
	}
	return errPasscodeMismatch
}

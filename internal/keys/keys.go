// Package keys reads and writes the Matrix room key export file format: an
// armored, passphrase-encrypted container holding a JSON array of megolm
// session exports. The container is what `/keys import` and `/keys export`
// exchange with other clients.
package keys

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"

	mxerrors "github.com/alexjbarnes/matrix-sync/internal/errors"
)

const (
	armorHeader = "-----BEGIN MEGOLM SESSION DATA-----"
	armorFooter = "-----END MEGOLM SESSION DATA-----"

	// exportVersion is the container format version byte.
	exportVersion = 0x01

	saltLen = 16
	ivLen   = 16
	macLen  = 32

	// derivedKeyLen is the PBKDF2 output length: 32 bytes of AES key
	// followed by 32 bytes of HMAC key.
	derivedKeyLen = 64

	// DefaultRounds is the PBKDF2 iteration count used when exporting.
	DefaultRounds = 100_000

	// armorLineWidth is the base64 wrap width inside the armor.
	armorLineWidth = 96

	// exportFilePerm is the permission mode for exported key files.
	exportFilePerm = fs.FileMode(0o600)
)

// Session is one megolm session entry from a decrypted export payload.
type Session struct {
	SessionID string
	RoomID    string
	Raw       json.RawMessage
}

// deriveKeys stretches the passphrase into an AES key and an HMAC key.
// The passphrase is normalized to NFKC first so visually identical input
// produced on different platforms derives the same keys.
func deriveKeys(passphrase string, salt []byte, rounds int) (aesKey, macKey []byte) {
	stretched := pbkdf2.Key(
		[]byte(norm.NFKC.String(passphrase)),
		salt,
		rounds,
		derivedKeyLen,
		sha512.New,
	)

	return stretched[:32], stretched[32:]
}

// Encrypt seals a JSON payload into an armored export blob.
func Encrypt(payload []byte, passphrase string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}
	// The format requires bit 63 of the counter block to be cleared.
	iv[8] &= 0x7f

	aesKey, macKey := deriveKeys(passphrase, salt, DefaultRounds)

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return "", fmt.Errorf("creating AES cipher: %w", err)
	}

	ciphertext := make([]byte, len(payload))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, payload)

	body := make([]byte, 0, 1+saltLen+ivLen+4+len(ciphertext)+macLen)
	body = append(body, exportVersion)
	body = append(body, salt...)
	body = append(body, iv...)
	body = binary.BigEndian.AppendUint32(body, DefaultRounds)
	body = append(body, ciphertext...)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	body = mac.Sum(body)

	return armor(body), nil
}

// Decrypt opens an armored export blob and returns the JSON payload.
// A MAC mismatch is reported as ErrBadPassphrase; structural problems as
// ErrBadKeyExport.
func Decrypt(armored []byte, passphrase string) ([]byte, error) {
	body, err := dearmor(armored)
	if err != nil {
		return nil, err
	}

	// version + salt + iv + rounds + mac, with a possibly empty ciphertext.
	if len(body) < 1+saltLen+ivLen+4+macLen {
		return nil, fmt.Errorf("%w: truncated body", mxerrors.ErrBadKeyExport)
	}

	if body[0] != exportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", mxerrors.ErrBadKeyExport, body[0])
	}

	salt := body[1 : 1+saltLen]
	iv := body[1+saltLen : 1+saltLen+ivLen]
	rounds := binary.BigEndian.Uint32(body[1+saltLen+ivLen : 1+saltLen+ivLen+4])
	ciphertext := body[1+saltLen+ivLen+4 : len(body)-macLen]
	theirMAC := body[len(body)-macLen:]

	aesKey, macKey := deriveKeys(passphrase, salt, int(rounds))

	mac := hmac.New(sha256.New, macKey)
	mac.Write(body[:len(body)-macLen])
	if subtle.ConstantTimeCompare(mac.Sum(nil), theirMAC) != 1 {
		return nil, mxerrors.ErrBadPassphrase
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}

	payload := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(payload, ciphertext)

	return payload, nil
}

// ParseSessions decodes a decrypted payload into its session entries.
// The payload must be a JSON array of session objects, each carrying a
// session_id.
func ParseSessions(payload []byte) ([]Session, error) {
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", mxerrors.ErrBadKeyExport)
	}

	parsed := gjson.ParseBytes(payload)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: payload is not a session list", mxerrors.ErrBadKeyExport)
	}

	var sessions []Session
	for _, entry := range parsed.Array() {
		sessionID := entry.Get("session_id").Str
		if sessionID == "" {
			return nil, fmt.Errorf("%w: session entry without session_id", mxerrors.ErrBadKeyExport)
		}

		sessions = append(sessions, Session{
			SessionID: sessionID,
			RoomID:    entry.Get("room_id").Str,
			Raw:       json.RawMessage(entry.Raw),
		})
	}

	return sessions, nil
}

// ReadFile reads and opens an export file.
func ReadFile(path, passphrase string) ([]Session, error) {
	armored, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key export: %w", err)
	}

	payload, err := Decrypt(armored, passphrase)
	if err != nil {
		return nil, err
	}

	return ParseSessions(payload)
}

// WriteFile seals the given sessions and writes them to path, overwriting
// any existing file.
func WriteFile(path, passphrase string, sessions []json.RawMessage) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}

	armored, err := Encrypt(payload, passphrase)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(armored), exportFilePerm); err != nil {
		return fmt.Errorf("writing key export: %w", err)
	}

	return nil
}

func armor(body []byte) string {
	encoded := base64.StdEncoding.EncodeToString(body)

	var buf bytes.Buffer
	buf.WriteString(armorHeader)
	buf.WriteByte('\n')
	for len(encoded) > armorLineWidth {
		buf.WriteString(encoded[:armorLineWidth])
		buf.WriteByte('\n')
		encoded = encoded[armorLineWidth:]
	}
	buf.WriteString(encoded)
	buf.WriteByte('\n')
	buf.WriteString(armorFooter)
	buf.WriteByte('\n')

	return buf.String()
}

func dearmor(armored []byte) ([]byte, error) {
	text := string(bytes.TrimSpace(armored))

	if !bytes.HasPrefix([]byte(text), []byte(armorHeader)) {
		return nil, fmt.Errorf("%w: missing header line", mxerrors.ErrBadKeyExport)
	}
	if !bytes.HasSuffix([]byte(text), []byte(armorFooter)) {
		return nil, fmt.Errorf("%w: missing footer line", mxerrors.ErrBadKeyExport)
	}

	inner := text[len(armorHeader) : len(text)-len(armorFooter)]
	encoded := bytes.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, []byte(inner))

	body, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mxerrors.ErrBadKeyExport, err)
	}

	return body, nil
}

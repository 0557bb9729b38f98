package remote

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyLength   = 16
	nonceLength = 16
	base62      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	sessionLabel = "snapscroll-remote-v1"

	// maxSealedSize bounds one encrypted record; frames are tiny, so
	// anything larger means a broken or hostile peer.
	maxSealedSize = 4096
)

// GenerateKey returns a fresh random 16-character base62 pre-shared key.
func GenerateKey() (string, error) {
	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	key := make([]byte, keyLength)
	for i, b := range raw {
		key[i] = base62[int(b)%len(base62)]
	}
	return string(key), nil
}

// LoadOrCreateKey reads the pre-shared key from path, generating and
// persisting a new one (0600) when the file does not exist yet.
func LoadOrCreateKey(path string) (key string, created bool, err error) {
	if data, err := os.ReadFile(path); err == nil {
		return strings.TrimSpace(string(data)), false, nil
	}
	key, err = GenerateKey()
	if err != nil {
		return "", false, fmt.Errorf("generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", false, fmt.Errorf("write key file: %w", err)
	}
	return key, true, nil
}

// sessionKey mixes the pre-shared key with both sides' nonces into a
// 32-byte session key. SHA-256 mixing keeps client implementations
// trivial in any language.
func sessionKey(psk string, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	h.Write([]byte(psk))
	h.Write(serverNonce)
	h.Write(clientNonce)
	h.Write([]byte(sessionLabel))
	return h.Sum(nil)
}

// secureConn frames and encrypts everything written to the underlying
// conn with ChaCha20-Poly1305. Record layout: u16 BE length, 12-byte
// nonce, ciphertext. Decryption failure surfaces as a read error, which
// is what authenticates the peer: only a holder of the pre-shared key
// can produce records that open.
type secureConn struct {
	net.Conn
	aead    cipher.AEAD
	sendCtr uint64
	recvBuf bytes.Buffer
}

func newSecureConn(conn net.Conn, key []byte) (*secureConn, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &secureConn{Conn: conn, aead: aead}, nil
}

func (c *secureConn) Write(p []byte) (int, error) {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[4:], c.sendCtr)
	c.sendCtr++

	sealed := c.aead.Seal(nil, nonce, p, nil)
	record := make([]byte, 2+len(nonce)+len(sealed))
	binary.BigEndian.PutUint16(record, uint16(len(nonce)+len(sealed)))
	copy(record[2:], nonce)
	copy(record[2+len(nonce):], sealed)

	if _, err := c.Conn.Write(record); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *secureConn) Read(p []byte) (int, error) {
	for c.recvBuf.Len() == 0 {
		var hdr [2]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := int(binary.BigEndian.Uint16(hdr[:]))
		if length <= chacha20poly1305.NonceSize || length > maxSealedSize {
			return 0, fmt.Errorf("bad record length %d", length)
		}
		record := make([]byte, length)
		if _, err := io.ReadFull(c.Conn, record); err != nil {
			return 0, err
		}
		plain, err := c.aead.Open(nil, record[:chacha20poly1305.NonceSize], record[chacha20poly1305.NonceSize:], nil)
		if err != nil {
			return 0, fmt.Errorf("decrypt record: %w", err)
		}
		c.recvBuf.Write(plain)
	}
	return c.recvBuf.Read(p)
}

// handshake exchanges nonces and returns the encrypted session conn.
// The server speaks first.
func handshake(conn net.Conn, psk string, isServer bool) (net.Conn, error) {
	mine := make([]byte, nonceLength)
	if _, err := rand.Read(mine); err != nil {
		return nil, err
	}
	theirs := make([]byte, nonceLength)

	if isServer {
		if _, err := conn.Write(mine); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(conn, theirs); err != nil {
			return nil, err
		}
		return newSecureConn(conn, sessionKey(psk, mine, theirs))
	}

	if _, err := io.ReadFull(conn, theirs); err != nil {
		return nil, err
	}
	if _, err := conn.Write(mine); err != nil {
		return nil, err
	}
	return newSecureConn(conn, sessionKey(psk, theirs, mine))
}

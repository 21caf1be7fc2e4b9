package gpg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func newTestEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("pkggate test", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return entity
}

func writePublicKey(t *testing.T, entity *openpgp.Entity, armored bool) string {
	t.Helper()
	var buf bytes.Buffer
	if armored {
		w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := entity.Serialize(w); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	} else if err := entity.Serialize(&buf); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "keys.asc")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func sign(t *testing.T, entity *openpgp.Entity, content []byte, armored bool) []byte {
	t.Helper()
	var sig bytes.Buffer
	var err error
	if armored {
		err = openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(content), nil)
	} else {
		err = openpgp.DetachSign(&sig, entity, bytes.NewReader(content), nil)
	}
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	return sig.Bytes()
}

func TestVerifier_VerifyDetached(t *testing.T) {
	entity := newTestEntity(t)
	content := []byte("package archive bytes")

	for _, armored := range []bool{true, false} {
		t.Run(fmt.Sprintf("armored=%v", armored), func(t *testing.T) {
			v := NewVerifier()
			if err := v.ImportKeyFromFile(writePublicKey(t, entity, armored)); err != nil {
				t.Fatalf("ImportKeyFromFile() error = %v", err)
			}
			if v.KeyringSize() != 1 {
				t.Errorf("KeyringSize() = %d, want 1", v.KeyringSize())
			}

			fingerprint, err := v.VerifyDetached(content, sign(t, entity, content, armored))
			if err != nil {
				t.Fatalf("VerifyDetached() error = %v", err)
			}
			if fingerprint != fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint) {
				t.Errorf("fingerprint = %s", fingerprint)
			}
		})
	}
}

func TestVerifier_TamperedContent(t *testing.T) {
	entity := newTestEntity(t)
	v := NewVerifier()
	if err := v.ImportKeyFromFile(writePublicKey(t, entity, true)); err != nil {
		t.Fatal(err)
	}

	sig := sign(t, entity, []byte("original"), true)
	_, err := v.VerifyDetached([]byte("tampered"), sig)
	if err == nil || !strings.Contains(err.Error(), "signature verification failed") {
		t.Errorf("expected verification failure, got %v", err)
	}
}

func TestVerifier_UnknownSigner(t *testing.T) {
	trusted := newTestEntity(t)
	stranger := newTestEntity(t)

	v := NewVerifier()
	if err := v.ImportKeyFromFile(writePublicKey(t, trusted, true)); err != nil {
		t.Fatal(err)
	}

	content := []byte("payload")
	if _, err := v.VerifyDetached(content, sign(t, stranger, content, false)); err == nil {
		t.Error("signature from a key outside the keyring must fail")
	}
}

func TestVerifier_EmptyKeyring(t *testing.T) {
	_, err := NewVerifier().VerifyDetached([]byte("x"), []byte("0123456789abcdef"))
	if err == nil || !strings.Contains(err.Error(), "no GPG keys imported") {
		t.Errorf("expected empty keyring error, got %v", err)
	}
}

func TestVerifier_ShortSignature(t *testing.T) {
	entity := newTestEntity(t)
	v := NewVerifier()
	if err := v.ImportKeyFromFile(writePublicKey(t, entity, true)); err != nil {
		t.Fatal(err)
	}
	if _, err := v.VerifyDetached([]byte("x"), []byte("short")); err == nil {
		t.Error("expected error for short signature")
	}
}

func TestVerifier_ImportKeyFromFile_NonexistentFile(t *testing.T) {
	err := NewVerifier().ImportKeyFromFile("/nonexistent/key.asc")
	if err == nil || !strings.Contains(err.Error(), "failed to open key file") {
		t.Errorf("expected 'failed to open key file' error, got: %v", err)
	}
}

func TestVerifier_ImportKeyFromFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.asc")
	if err := os.WriteFile(path, []byte("not a gpg key"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := NewVerifier().ImportKeyFromFile(path); err == nil {
		t.Fatal("expected error for invalid key file")
	}
}

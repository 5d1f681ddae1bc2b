// Package artifact persists the trained vectorizer and classifier.
//
// A blob is the 4-byte magic "PGA1" followed by a zstd-compressed JSON
// envelope that records the artifact kind, so a classifier file can never be
// loaded as a vectorizer by mistake.
package artifact

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

const magic = "PGA1"

// Maximum decoded size of a blob
const maxDecodedSize = 1 << 30

// Kind identifies what an artifact holds
type Kind string

const (
	KindVectorizer Kind = "tfidf_vectorizer"
	KindClassifier Kind = "random_forest"
)

// ErrBadMagic is returned when a file is not an artifact blob
var ErrBadMagic = errors.New("not a phishguard artifact")

// ErrWrongKind is returned when an artifact holds something else than requested
var ErrWrongKind = errors.New("artifact has the wrong kind")

type envelope struct {
	Kind      Kind            `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode writes value as an artifact of the given kind
func Encode(w io.Writer, kind Kind, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", kind)
	}
	data, err := json.Marshal(envelope{Kind: kind, CreatedAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return errors.Wrap(err, "failed to marshal envelope")
	}

	if _, err := io.WriteString(w, magic); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return errors.Wrap(err, "failed to create compressor")
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return errors.Wrap(err, "failed to compress artifact")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "failed to flush compressor")
	}
	return nil
}

// Decode reads an artifact of the given kind into value
func Decode(r io.Reader, kind Kind, value any) (time.Time, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return time.Time{}, ErrBadMagic
		}
		return time.Time{}, errors.Wrap(err, "failed to read header")
	}
	if !bytes.Equal(header, []byte(magic)) {
		return time.Time{}, ErrBadMagic
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to create decompressor")
	}
	defer dec.Close()

	var env envelope
	if err := json.NewDecoder(dec).Decode(&env); err != nil {
		return time.Time{}, errors.Wrap(err, "failed to decode artifact")
	}
	if env.Kind != kind {
		return time.Time{}, errors.Wrapf(ErrWrongKind, "expected %s, found %q", kind, env.Kind)
	}
	if err := json.Unmarshal(env.Payload, value); err != nil {
		return time.Time{}, errors.Wrapf(err, "failed to decode %s payload", kind)
	}
	return env.CreatedAt, nil
}

// save writes an artifact atomically: the blob goes to a temporary file in
// the target directory which is then renamed over path.
func save(path string, kind Kind, value any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = Encode(buf, kind, value); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return errors.Wrap(err, "failed to write artifact")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync artifact")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close artifact")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to move artifact to %s", path)
	}
	return nil
}

func load(path string, kind Kind, value any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	if _, err := Decode(bufio.NewReader(f), kind, value); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

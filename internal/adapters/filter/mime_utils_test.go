package filter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(strings.ReplaceAll(raw, "\n", "\r\n")))
	require.NoError(t, err)
	return msg
}

func TestExtractTextFromMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain",
			raw:  "Subject: hi\n\nHello there\n",
			want: "Hello there\r\n",
		},
		{
			name: "latin1 quoted printable",
			raw: "Subject: hi\nContent-Type: text/plain; charset=iso-8859-1\nContent-Transfer-Encoding: quoted-printable\n\n" +
				"Caf=E9 cr=E8me\n",
			want: "Café crème\r\n",
		},
		{
			name: "multipart prefers plain text and skips attachments",
			raw: "Subject: hi\nContent-Type: multipart/mixed; boundary=XX\n\n" +
				"--XX\nContent-Type: multipart/alternative; boundary=YY\n\n" +
				"--YY\nContent-Type: text/plain\n\nverify your account\n" +
				"--YY\nContent-Type: text/html\n\n<p>verify <b>your</b> account</p>\n" +
				"--YY--\n" +
				"--XX\nContent-Type: text/plain\nContent-Disposition: attachment; filename=a.txt\n\nsecret attachment\n" +
				"--XX--\n",
			want: "verify your account",
		},
		{
			name: "html only keeps links",
			raw: "Subject: hi\nContent-Type: text/html; charset=utf-8\n\n" +
				"<html><style>p{}</style><body><p>Click <a href=\"http://evil.example/x\">here</a></p></body></html>\n",
			want: "Click here http://evil.example/x",
		},
		{
			name: "base64 part",
			raw: "Subject: hi\nContent-Type: multipart/mixed; boundary=ZZ\n\n" +
				"--ZZ\nContent-Type: text/plain; charset=utf-8\nContent-Transfer-Encoding: base64\n\n" +
				"cmVzZXQgeW91\ncg==\n" +
				"--ZZ--\n",
			want: "reset your",
		},
		{
			name: "untyped part is sniffed",
			raw: "Subject: hi\nContent-Type: multipart/mixed; boundary=QQ\n\n" +
				"--QQ\n\nplain words without a type\n" +
				"--QQ--\n",
			want: "plain words without a type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			text, err := extractTextFromMessage(readMessage(t, tt.raw))
			req.NoError(err)
			req.Equal(tt.want, text)
		})
	}
}

func TestDecodeEncodedHeader(t *testing.T) {
	req := require.New(t)

	decoded, err := decodeEncodedHeader("=?iso-8859-1?q?Caf=E9?= ouvert")
	req.NoError(err)
	req.Equal("Café ouvert", decoded)

	decoded, err = decodeEncodedHeader("=?utf-8?b?VmVyaWZ5IG5vdw==?=")
	req.NoError(err)
	req.Equal("Verify now", decoded)

	decoded, err = decodeEncodedHeader("plain subject")
	req.NoError(err)
	req.Equal("plain subject", decoded)
}

package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]string{
		"あきら": "アキラ",
		"たろう": "太郎",
		"ｊｉｒｏ": "Jiro",
	})

	tests := []struct {
		in   string
		want string
	}{
		{"アキラ", "アキラ"},
		{"あきら", "アキラ"},
		{"あきらさん", "アキラ"},
		{"あきらくん", "アキラ"},
		{"タロウ", "太郎"},
		{"たろう君", "太郎"},
		{"jiro", "Jiro"},
		{"まっさん", "まっさん"},
		{"ゲストさん", "ゲスト"},
		{"さん", "さん"},
		{" Ｕｎｋｎｏｗｎ ", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizer_Nil(t *testing.T) {
	var n *Normalizer
	assert.Equal(t, "A", n.Normalize("Ａ"))
}

// Package nickname builds display names such as "용감한고양이42".
package nickname

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

var adjectives = []string{
	"용감한", "성실한", "다정한", "씩씩한", "슬기로운",
	"부지런한", "명랑한", "차분한", "든든한", "반짝이는",
	"느긋한", "재빠른", "따뜻한", "꼼꼼한", "유쾌한",
}

var nouns = []string{
	"고양이", "호랑이", "다람쥐", "고래", "부엉이",
	"여우", "펭귄", "수달", "판다", "두루미",
	"거북이", "사슴", "돌고래", "참새", "코끼리",
}

// Generator is safe for concurrent use. Two generators built from the same
// seed produce the same sequence.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewFromClock seeds from the wall clock.
func NewFromClock() *Generator {
	return New(uint64(time.Now().UnixNano()))
}

// Next returns adjective + noun + a two-digit number.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	adj := adjectives[g.rng.IntN(len(adjectives))]
	noun := nouns[g.rng.IntN(len(nouns))]
	return fmt.Sprintf("%s%s%02d", adj, noun, g.rng.IntN(100))
}

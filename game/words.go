package game

import "math/rand"

// WordSource supplies candidate words for the drawer to choose from. The
// postgres repo implements it from the words table.
type WordSource interface {
	RandomWords(count int) []string
}

// Fallback list used when the word source comes up short.
var defaultWords = []string{
	"cat", "dog", "house", "car", "tree", "book", "phone", "computer",
	"table", "chair", "window", "door", "flower", "sun", "moon", "star",
	"fish", "bird", "elephant", "lion", "pizza", "cake", "apple", "banana",
	"guitar", "piano", "bicycle", "airplane", "boat", "train", "mountain",
	"beach",
}

func (s *Session) pickWords(count int) []string {
	words := s.words.RandomWords(count)
	if len(words) >= count {
		return words[:count]
	}
	perm := rand.Perm(len(defaultWords))
	picked := make([]string, 0, count)
	for _, i := range perm[:count] {
		picked = append(picked, defaultWords[i])
	}
	return picked
}

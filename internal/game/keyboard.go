package game

import (
	"encoding/json"
	"fmt"
)

// KeyStatus is the best feedback seen for a letter during a session.
// The zero value is KeyUnused and the ordering of the constants is the
// upgrade order: a status may only ever move to a higher value.
type KeyStatus uint8

const (
	KeyUnused KeyStatus = iota
	KeyAbsent
	KeyPresent
	KeyCorrect
)

var keyStatusNames = [...]string{
	KeyUnused:  "unused",
	KeyAbsent:  "absent",
	KeyPresent: "present",
	KeyCorrect: "correct",
}

func (k KeyStatus) String() string {
	if int(k) < len(keyStatusNames) {
		return keyStatusNames[k]
	}
	return fmt.Sprintf("KeyStatus(%d)", uint8(k))
}

// MarshalText encodes the status by name.
func (k KeyStatus) MarshalText() ([]byte, error) {
	if int(k) >= len(keyStatusNames) {
		return nil, fmt.Errorf("game: invalid key status %d", uint8(k))
	}
	return []byte(keyStatusNames[k]), nil
}

// UnmarshalText decodes a status name.
func (k *KeyStatus) UnmarshalText(b []byte) error {
	for i, name := range keyStatusNames {
		if name == string(b) {
			*k = KeyStatus(i)
			return nil
		}
	}
	return fmt.Errorf("game: unknown key status %q", b)
}

// Merge returns the higher of the two statuses.
func (k KeyStatus) Merge(other KeyStatus) KeyStatus {
	if other > k {
		return other
	}
	return k
}

// Status maps a letter's mark to its keyboard tier.
func (m Mark) Status() KeyStatus {
	switch m {
	case MarkCorrect:
		return KeyCorrect
	case MarkPresent:
		return KeyPresent
	case MarkAbsent:
		return KeyAbsent
	}
	return KeyUnused
}

// Keyboard holds one KeyStatus per letter a–z. It is a value type, so
// copies handed to callers are snapshots.
type Keyboard [26]KeyStatus

// Status returns the recorded status for letter c.
// Anything outside a–z reports KeyUnused.
func (kb Keyboard) Status(c byte) KeyStatus {
	if c < 'a' || c > 'z' {
		return KeyUnused
	}
	return kb[c-'a']
}

// Record merges a scored guess into the keyboard. Statuses never downgrade.
func (kb *Keyboard) Record(g Guess) {
	for i := 0; i < len(g.Word) && i < WordLength; i++ {
		c := g.Word[i]
		if c < 'a' || c > 'z' {
			continue
		}
		kb[c-'a'] = kb[c-'a'].Merge(g.Marks[i].Status())
	}
}

// MarshalJSON renders the keyboard as {"a":"unused","b":"present",...}.
func (kb Keyboard) MarshalJSON() ([]byte, error) {
	m := make(map[string]KeyStatus, len(kb))
	for i, s := range kb {
		m[string(rune('a'+i))] = s
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts the object form written by MarshalJSON.
// Letters missing from the object are left unused.
func (kb *Keyboard) UnmarshalJSON(b []byte) error {
	var m map[string]KeyStatus
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*kb = Keyboard{}
	for k, s := range m {
		if len(k) != 1 || k[0] < 'a' || k[0] > 'z' {
			return fmt.Errorf("game: invalid keyboard letter %q", k)
		}
		kb[k[0]-'a'] = s
	}
	return nil
}

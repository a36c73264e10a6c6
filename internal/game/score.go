package game

// Score implements the two-pass feedback algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count the target letters that were not matched exactly.
//
// Pass 2:
//   - For each remaining guess letter: if there is an unclaimed occurrence of it
//     in the target, mark present and claim it; otherwise mark absent.
//
// Pass 1 must finish before pass 2 starts, otherwise a repeated guess letter can
// claim an occurrence that belongs to a later exact match.
//
// Both words must be WordLength lowercase a–z; callers validate first.
func Score(guess, target string) [WordLength]Mark {
	var res [WordLength]Mark
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == target[i] {
			res[i] = MarkCorrect
		} else {
			counts[target[i]-'a']++
		}
	}

	for i := 0; i < WordLength; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := guess[i] - 'a'
		if counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

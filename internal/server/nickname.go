package server

import "regexp"

// nicknamePattern is the shared leaderboard-name contract: 3-20 characters,
// letters, digits, spaces, hyphens, underscores.
var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]{3,20}$`)

func validNickname(name string) bool {
	return nicknamePattern.MatchString(name)
}

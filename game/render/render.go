// Package render formats games as chat text: an emoji board, a status line
// and the announcements a player sees.
package render

import (
	"fmt"
	"strings"

	"github.com/wricardo/tengame/game/engine"
	"github.com/wricardo/tengame/game/session"
)

const (
	AlreadyInProgress = "You already have a game in progress!"
	NotYourGame       = "This game doesn't belong to you!"
	NoGame            = "You don't have a game in progress. Start one first."
	ExitPrompt        = "Are you sure you want to exit the game? Call exit_game again with confirm set to true."
	ExitConfirmed     = "Game closed."
	NoInviteLink      = "Unfortunately, I don't have an invite link. Please contact the bot owner."
)

var tileEmoji = [...]string{
	":zero:", ":one:", ":two:", ":three:", ":four:",
	":five:", ":six:", ":seven:", ":eight:", ":nine:",
	":keycap_ten:",
}

// TileEmoji returns the chat emoji for a rank
func TileEmoji(r engine.Rank) string {
	if r.IsEmpty() || int(r) >= len(tileEmoji) || r < 0 {
		return ":purple_square:"
	}
	return tileEmoji[r]
}

// Board draws the grid one emoji per cell, one line per row
func Board(cells engine.Cells) string {
	var b strings.Builder
	for _, row := range cells {
		for _, r := range row {
			b.WriteString(TileEmoji(r))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Status is the score and turn line shown under the welcome text
func Status(score, turn int) string {
	return fmt.Sprintf("Score: **%d** | Turn: **%d**", score, turn)
}

// Welcome greets the player and explains the twist on 2048
func Welcome(player string) string {
	if player == "" {
		player = "Player"
	}
	return fmt.Sprintf("**%s, Welcome to 2048!** *Actually, it's 10, but let's ignore that :)*\n", player) +
		"I assume you know the rules. Just move the tiles up, down, left or right.\n" +
		"The only difference between 2048 and 10 is that the number increments instead of doubling, and your goal is to reach 10.\n"
}

// Final announces a finished game. It is empty while the game is active.
func Final(state session.State, score, turn int) string {
	switch state {
	case session.StateWon:
		return fmt.Sprintf("**You've won!** With a score of **%d** in **%d** turns.", score, turn)
	case session.StateLost:
		return fmt.Sprintf("**You've lost!** With a score of **%d** in **%d** turns.", score, turn)
	}
	return ""
}

// Game renders the full message for a snapshot
func Game(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString(Welcome(snap.Labels.Player))
	b.WriteString("\n")
	b.WriteString(Status(snap.Score, snap.Turn))
	b.WriteString("\n")
	b.WriteString(Board(snap.Grid))
	if final := Final(snap.State, snap.Score, snap.Turn); final != "" {
		b.WriteString("\n")
		b.WriteString(final)
		b.WriteString("\n")
	}
	return b.String()
}

// Invite returns the message for the invite command
func Invite(link string) string {
	if strings.TrimSpace(link) == "" {
		return NoInviteLink
	}
	return fmt.Sprintf("Click the link to add me to your server!\n<%s>", link)
}

package commands

import "github.com/safatanc/hypergiga-core/internal/app/models"

func GameCommands(_ *Registry, _ *Deps) []Command {
	return []Command{
		replyCommand(models.CommandMetadata{
			Name:        "rpg",
			Aliases:     []string{"game"},
			Description: "RPG game commands",
			Usage:       "/rpg <start|status|attack|heal>",
			Examples:    []string{"/rpg start", "/rpg status"},
			Cooldown:    30,
		}, models.CategoryGames, 0, "⚔️ RPG game started!"),
		replyCommand(models.CommandMetadata{
			Name:        "tictactoe",
			Aliases:     []string{"ttt"},
			Description: "Play Tic-tac-toe",
			Usage:       "/tictactoe <@user>",
			Examples:    []string{"/tictactoe @username"},
			Cooldown:    10,
		}, models.CategoryGames, 0, "⭕ Tic-tac-toe game started!"),
		replyCommand(models.CommandMetadata{
			Name:        "chess",
			Aliases:     []string{"chessgame"},
			Description: "Play chess",
			Usage:       "/chess <@user>",
			Examples:    []string{"/chess @username"},
			Cooldown:    10,
		}, models.CategoryGames, 0, "♟️ Chess game started!"),
		// "quiz" belongs to the utilities catalog.
		replyCommand(models.CommandMetadata{
			Name:        "trivia",
			Description: "Play trivia",
			Usage:       "/trivia [category]",
			Examples:    []string{"/trivia", "/trivia science"},
			Cooldown:    60,
		}, models.CategoryGames, 0, "🧠 Trivia question!"),
		replyCommand(models.CommandMetadata{
			Name:        "leaderboard",
			Aliases:     []string{"lb", "top"},
			Description: "Show leaderboard",
			Usage:       "/leaderboard [game]",
			Examples:    []string{"/leaderboard", "/leaderboard rpg"},
			Cooldown:    30,
		}, models.CategoryGames, 0, "🏆 Showing leaderboard!"),
	}
}

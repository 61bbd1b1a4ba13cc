// Command autoplay plays a game of Ten against a running server through the
// REST API, picking each move with a one-step greedy search.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/tengame/game/service"
	"github.com/wricardo/tengame/game/session"
)

var errGameNotFound = errors.New("game not found")

// Client talks to one player's game on a Ten server
type Client struct {
	baseURL string
	path    string
	client  *http.Client
}

func NewClient(baseURL, serverID, playerID string) *Client {
	return &Client{
		baseURL: baseURL,
		path:    fmt.Sprintf("/api/servers/%s/players/%s/game", url.PathEscape(serverID), url.PathEscape(playerID)),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, errGameNotFound
	}
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusConflict {
		return resp.StatusCode, fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return resp.StatusCode, fmt.Errorf("parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Start creates a game, or returns the one already running
func (c *Client) Start(ctx context.Context, playerName string) (*service.GameInfo, error) {
	var result service.StartResult
	body := map[string]string{}
	if playerName != "" {
		body["player_label"] = playerName
	}
	if _, err := c.do(ctx, http.MethodPost, c.path, body, &result); err != nil {
		return nil, err
	}
	if result.Game == nil {
		return nil, errors.New("start returned no game")
	}
	return result.Game, nil
}

func (c *Client) Exit(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, c.path, nil, nil)
	return err
}

func (c *Client) Move(ctx context.Context, direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	if _, err := c.do(ctx, http.MethodPost, c.path+"/move", map[string]string{"direction": direction}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// play moves until the game ends, nothing can move, or maxMoves is reached
func play(ctx context.Context, c *Client, game *service.GameInfo, maxMoves int, delay time.Duration, logger *zap.Logger) (session.Snapshot, error) {
	snap := game.Game
	for i := 0; i < maxMoves && !snap.State.Terminal(); i++ {
		choice, ok, err := BestMove(snap.Grid)
		if err != nil {
			return snap, err
		}
		if !ok {
			logger.Warn("no direction moves the board", zap.Int("turn", snap.Turn))
			break
		}

		result, err := c.Move(ctx, choice.Direction.String())
		if err != nil {
			return snap, err
		}
		snap = result.Game.Game

		logger.Debug("move",
			zap.String("direction", choice.Direction.String()),
			zap.Int("value", choice.Value),
			zap.Int("score_delta", result.ScoreDelta),
			zap.Int("score", snap.Score),
			zap.Int("turn", snap.Turn))

		if delay > 0 {
			select {
			case <-ctx.Done():
				return snap, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return snap, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play a game of Ten through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Game server URL", Value: "http://localhost:8080"},
			&cli.StringFlag{Name: "server", Usage: "Server id", Value: "autoplay"},
			&cli.StringFlag{Name: "player", Usage: "Player id", Value: "bot"},
			&cli.StringFlag{Name: "name", Usage: "Player display name", Value: "Autoplay"},
			&cli.IntFlag{Name: "max-moves", Usage: "Maximum moves to play", Value: 5000},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between moves"},
			&cli.BoolFlag{Name: "restart", Usage: "Exit any running game first"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := zap.NewNop()
			if cmd.Bool("v") {
				var err error
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}
			defer logger.Sync()

			c := NewClient(cmd.String("url"), cmd.String("server"), cmd.String("player"))
			if cmd.Bool("restart") {
				if err := c.Exit(ctx); err != nil && !errors.Is(err, errGameNotFound) {
					return err
				}
			}

			game, err := c.Start(ctx, cmd.String("name"))
			if err != nil {
				return fmt.Errorf("failed to start game: %w", err)
			}

			final, err := play(ctx, c, game, int(cmd.Int("max-moves")), cmd.Duration("delay"), logger)
			if err != nil {
				return err
			}

			fmt.Printf("%s after %d turns with score %d\n", final.State, final.Turn, final.Score)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

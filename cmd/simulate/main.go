package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"kmahjong/internal/app"
	"kmahjong/internal/bot"
	"kmahjong/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	matchCount int
	seed       int64
	level      string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run full bot-vs-bot mahjong matches in process",
	Long: `Runs complete 12-round matches between four bots and reports
aggregate results. Useful for exercising the rules engine and for
tuning bot strategies without a running server.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.New(os.Stdout)
		logger.SetReportTimestamp(true)
		logger.SetTimeFormat(time.DateTime)
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}

		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		logger.Info("Starting simulation", "matches", matchCount, "seed", seed, "level", level)

		stats, err := runSimulation(logger, matchCount, seed, level)
		if err != nil {
			logger.Error("Simulation failed", "err", err)
			os.Exit(1)
		}
		stats.report(logger)
	},
}

func init() {
	rootCmd.Flags().IntVar(&matchCount, "matches", 10, "number of matches to play")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "rng seed, 0 picks one from the clock")
	rootCmd.Flags().StringVar(&level, "level", "smart", "bot level: easy or smart")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "log every round result")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type simulationStats struct {
	Matches     int
	Rounds      int
	WinRounds   int
	WallDraws   int
	TurnDraws   int
	WinsBySeat  [domain.NumSeats]int
	TotalPoints int
	BestPoints  int
	BestYaku    string
}

func (s *simulationStats) report(logger *log.Logger) {
	logger.Info("Simulation finished",
		"matches", s.Matches,
		"rounds", s.Rounds,
		"won", s.WinRounds,
		"wall_draws", s.WallDraws,
		"turn_draws", s.TurnDraws,
	)
	if s.WinRounds > 0 {
		logger.Info("Scoring",
			"avg_points", float64(s.TotalPoints)/float64(s.WinRounds),
			"best_points", s.BestPoints,
			"best_yaku", s.BestYaku,
		)
	}
	for seat, wins := range s.WinsBySeat {
		logger.Info("Seat results", "seat", seat, "round_wins", wins)
	}
}

func runSimulation(logger *log.Logger, matches int, seed int64, level string) (*simulationStats, error) {
	rng := rand.New(rand.NewSource(seed))
	stats := &simulationStats{Matches: matches}

	for i := 0; i < matches; i++ {
		if err := runMatch(logger, rng, level, stats); err != nil {
			return nil, fmt.Errorf("match %d: %w", i, err)
		}
	}
	return stats, nil
}

func runMatch(logger *log.Logger, rng *rand.Rand, level string, stats *simulationStats) error {
	svc := app.NewService(rng)
	m, _ := svc.StartMatch()

	var brains [domain.NumSeats]bot.Brain
	for seat := range brains {
		brain, err := bot.NewBrain(bot.LevelFromDifficulty(level), rng)
		if err != nil {
			return err
		}
		brains[seat] = brain
	}

	for !m.Over {
		if _, err := svc.StartRound(m); err != nil {
			return err
		}

		round := m.Round
		for round != nil && !round.Finished() {
			switch round.Phase {
			case domain.RoundDiscarding:
				seat := round.Current
				move, err := brains[seat].ChooseTurn(round, seat, round.CanTsumo, round.SelfKongs(seat))
				if err != nil {
					return err
				}
				switch {
				case move.Tsumo:
					_, err = svc.DeclareTsumo(m, seat)
				case move.Kong != nil:
					_, err = svc.DeclareKong(m, seat, *move.Kong)
				default:
					_, err = svc.Discard(m, seat, move.Discard)
				}
				if err != nil {
					return err
				}
			case domain.RoundCalling:
				decisions := make(map[int]domain.CallKind)
				for seat, opts := range round.Pending.Offers {
					decisions[seat] = brains[seat].ChooseCall(round, seat, round.Pending.Tile, opts)
				}
				if _, err := svc.ResolveCalls(m, decisions); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unexpected phase %q", round.Phase)
			}
		}

		stats.Rounds++
		outcome := round.Outcome
		switch outcome.Reason {
		case "win":
			stats.WinRounds++
			stats.WinsBySeat[outcome.Winner]++
			stats.TotalPoints += outcome.Result.Points
			if outcome.Result.Points > stats.BestPoints {
				stats.BestPoints = outcome.Result.Points
				stats.BestYaku = describeYaku(outcome.Result.Yaku)
			}
			logger.Debug("Round won",
				"round", m.RoundNumber,
				"winner", outcome.Winner,
				"tsumo", outcome.Tsumo,
				"points", outcome.Result.Points,
			)
		case "wall":
			stats.WallDraws++
			logger.Debug("Round drawn on wall", "round", m.RoundNumber)
		case "turns":
			stats.TurnDraws++
			logger.Debug("Round drawn on turn limit", "round", m.RoundNumber)
		}
	}

	standings := m.FinalStandings()
	sort.Slice(standings, func(i, j int) bool { return standings[i].Rank < standings[j].Rank })
	logger.Debug("Match over", "winner_seat", standings[0].Seat, "score", standings[0].Score)
	return nil
}

func describeYaku(yaku []domain.Yaku) string {
	out := ""
	for i, y := range yaku {
		if i > 0 {
			out += ","
		}
		out += y.Name
	}
	return out
}

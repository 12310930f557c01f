package domain

import "testing"

func baseCtx() WinContext {
	return WinContext{
		SeatWind:  Tile{Suit: SuitWind, Rank: WindSouth},
		RoundWind: Tile{Suit: SuitWind, Rank: WindEast},
	}
}

func yakuNames(result WinResult) map[string]int {
	out := make(map[string]int)
	for _, y := range result.Yaku {
		out[y.Name]++
	}
	return out
}

func TestEvaluateRejectsWrongSize(t *testing.T) {
	if _, ok := Evaluate(repeat(man(1), 13), nil, baseCtx()); ok {
		t.Fatal("evaluated a 13-tile hand")
	}
	if _, ok := Evaluate(repeat(man(1), 14), []Meld{{Kind: MeldPung, Tile: pin(2)}}, baseCtx()); ok {
		t.Fatal("evaluated a 17-tile virtual hand")
	}
}

func TestEvaluateYaku(t *testing.T) {
	tests := []struct {
		name       string
		concealed  []Tile
		melds      []Meld
		ctx        func(WinContext) WinContext
		wantYaku   map[string]int
		wantPoints int
	}{
		{
			name: "NoYakuTsumoFallback",
			concealed: concat(
				tiles(man(1), man(2), man(3)),
				tiles(man(4), man(5), man(6)),
				repeat(pin(2), 3),
				tiles(pin(6), pin(7), pin(8)),
				repeat(wind(WindNorth), 2),
			),
			ctx:        func(c WinContext) WinContext { c.Tsumo = true; return c },
			wantYaku:   map[string]int{"menzen_tsumo": 1, "no_yaku_tsumo": 1},
			wantPoints: 18,
		},
		{
			name: "AllSimplesTsumo",
			concealed: concat(
				tiles(man(2), man(3), man(4)),
				tiles(man(5), man(6), man(7)),
				tiles(pin(3), pin(4), pin(5)),
				repeat(pin(6), 3),
				repeat(man(8), 2),
			),
			ctx:        func(c WinContext) WinContext { c.Tsumo = true; return c },
			wantYaku:   map[string]int{"menzen_tsumo": 1, "all_simples": 1},
			wantPoints: 14,
		},
		{
			name: "AllRunsRon",
			concealed: concat(
				tiles(man(1), man(2), man(3)),
				tiles(man(4), man(5), man(6)),
				tiles(pin(1), pin(2), pin(3)),
				tiles(pin(4), pin(5), pin(6)),
				repeat(man(9), 2),
			),
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"all_runs": 1},
			wantPoints: 11,
		},
		{
			name: "HalfFlushRon",
			concealed: concat(
				tiles(man(1), man(2), man(3)),
				tiles(man(3), man(4), man(5)),
				tiles(man(7), man(8), man(9)),
				repeat(man(9), 2),
				repeat(wind(WindNorth), 3),
			),
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"half_flush": 1},
			wantPoints: 12,
		},
		{
			name: "FullFlushWithAllRuns",
			concealed: concat(
				tiles(man(1), man(2), man(3)),
				tiles(man(3), man(4), man(5)),
				tiles(man(5), man(6), man(7)),
				tiles(man(7), man(8), man(9)),
				repeat(man(9), 2),
			),
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"full_flush": 1, "all_runs": 1},
			wantPoints: 19,
		},
		{
			name: "PureStraightRon",
			concealed: concat(
				tiles(man(1), man(2), man(3)),
				tiles(man(4), man(5), man(6)),
				tiles(man(7), man(8), man(9)),
				repeat(pin(5), 3),
				repeat(pin(9), 2),
			),
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"pure_straight": 1},
			wantPoints: 14,
		},
		{
			name: "SeatAndRoundWind",
			concealed: concat(
				repeat(wind(WindSouth), 3),
				repeat(wind(WindEast), 3),
				tiles(man(2), man(3), man(4)),
				tiles(pin(4), pin(5), pin(6)),
				repeat(pin(9), 2),
			),
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"seat_wind": 1, "round_wind": 1},
			wantPoints: 12,
		},
		{
			name: "BigThreeDragons",
			concealed: concat(
				repeat(dragon(DragonRed), 3),
				repeat(dragon(DragonGreen), 3),
				repeat(dragon(DragonWhite), 3),
				tiles(man(2), man(3), man(4)),
				repeat(pin(5), 2),
			),
			ctx: func(c WinContext) WinContext { return c },
			wantYaku: map[string]int{
				"dragon_triple":           3,
				"big_three_dragons":       1,
				"four_concealed_triples":  0,
				"three_concealed_triples": 1,
			},
			wantPoints: 25,
		},
		{
			name: "SmallThreeDragons",
			concealed: concat(
				repeat(dragon(DragonRed), 3),
				repeat(dragon(DragonGreen), 3),
				repeat(dragon(DragonWhite), 2),
				tiles(man(1), man(2), man(3)),
				tiles(pin(4), pin(5), pin(6)),
			),
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"dragon_triple": 2, "small_three_dragons": 1},
			wantPoints: 18,
		},
		{
			name: "FourTriplesOpen",
			concealed: concat(
				repeat(man(2), 3),
				repeat(man(5), 3),
				repeat(pin(3), 3),
				repeat(pin(9), 2),
			),
			melds:      []Meld{{Kind: MeldPung, Tile: wind(WindNorth), From: 2}},
			ctx:        func(c WinContext) WinContext { return c },
			wantYaku:   map[string]int{"four_triples": 1},
			wantPoints: 12,
		},
		{
			name: "FourConcealedTriplesTsumo",
			concealed: concat(
				repeat(man(2), 3),
				repeat(man(5), 3),
				repeat(pin(3), 3),
				repeat(wind(WindNorth), 3),
				repeat(pin(9), 2),
			),
			ctx:        func(c WinContext) WinContext { c.Tsumo = true; return c },
			wantYaku:   map[string]int{"menzen_tsumo": 1, "four_concealed_triples": 1},
			wantPoints: 21,
		},
		{
			name: "ThreeConcealedTriplesTsumo",
			concealed: concat(
				repeat(man(2), 3),
				tiles(man(6), man(7), man(8)),
				repeat(pin(5), 3),
				repeat(wind(WindNorth), 3),
				repeat(pin(9), 2),
			),
			ctx:        func(c WinContext) WinContext { c.Tsumo = true; return c },
			wantYaku:   map[string]int{"menzen_tsumo": 1, "three_concealed_triples": 1},
			wantPoints: 17,
		},
		{
			name: "TwoConcealedKongs",
			concealed: concat(
				tiles(man(4), man(5), man(6)),
				tiles(pin(6), pin(7), pin(8)),
				repeat(man(9), 2),
			),
			melds: []Meld{
				{Kind: MeldClosedKong, Tile: man(1), From: -1},
				{Kind: MeldClosedKong, Tile: pin(2), From: -1},
			},
			ctx:        func(c WinContext) WinContext { c.Tsumo = true; return c },
			wantYaku:   map[string]int{"menzen_tsumo": 1, "two_concealed_kongs": 1},
			wantPoints: 15,
		},
		{
			name: "NineGatesTsumo",
			concealed: concat(
				repeat(man(1), 3),
				tiles(man(2), man(3), man(4)),
				tiles(man(5), man(5), man(6)),
				tiles(man(7), man(8)),
				repeat(man(9), 3),
			),
			ctx:        func(c WinContext) WinContext { c.Tsumo = true; return c },
			wantYaku:   map[string]int{"menzen_tsumo": 1, "nine_gates": 1, "full_flush": 1},
			wantPoints: 45,
		},
		{
			name: "BlessingOfHeaven",
			concealed: concat(
				tiles(man(2), man(3), man(4)),
				tiles(man(5), man(6), man(7)),
				tiles(pin(3), pin(4), pin(5)),
				repeat(pin(6), 3),
				repeat(man(8), 2),
			),
			ctx: func(c WinContext) WinContext {
				c.Tsumo = true
				c.Dealer = true
				c.FirstTurn = true
				return c
			},
			wantYaku:   map[string]int{"menzen_tsumo": 1, "all_simples": 1, "blessing_of_heaven": 1},
			wantPoints: 30,
		},
		{
			name: "BlessingOfEarth",
			concealed: concat(
				tiles(man(2), man(3), man(4)),
				tiles(man(5), man(6), man(7)),
				tiles(pin(3), pin(4), pin(5)),
				repeat(pin(6), 3),
				repeat(man(8), 2),
			),
			ctx: func(c WinContext) WinContext {
				c.Tsumo = true
				c.FirstTurn = true
				return c
			},
			wantYaku:   map[string]int{"menzen_tsumo": 1, "all_simples": 1, "blessing_of_earth": 1},
			wantPoints: 30,
		},
		{
			name: "BlessingOfMan",
			concealed: concat(
				tiles(man(2), man(3), man(4)),
				tiles(man(5), man(6), man(7)),
				tiles(pin(3), pin(4), pin(5)),
				repeat(pin(6), 3),
				repeat(man(8), 2),
			),
			ctx: func(c WinContext) WinContext {
				c.FirstTurn = true
				return c
			},
			wantYaku:   map[string]int{"all_simples": 1, "blessing_of_man": 1},
			wantPoints: 27,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			result, ok := Evaluate(test.concealed, test.melds, test.ctx(baseCtx()))
			if !ok {
				t.Fatal("hand did not evaluate as winning")
			}
			got := yakuNames(result)
			for name, n := range test.wantYaku {
				if got[name] != n {
					t.Errorf("yaku %q count = %d, want %d", name, got[name], n)
				}
			}
			if result.Points != test.wantPoints {
				t.Errorf("points = %d, want %d (yaku %v)", result.Points, test.wantPoints, got)
			}
		})
	}
}

func TestEvaluateFlowerAndTsumoBonuses(t *testing.T) {
	hand := concat(
		tiles(man(2), man(3), man(4)),
		tiles(man(5), man(6), man(7)),
		tiles(pin(3), pin(4), pin(5)),
		repeat(pin(6), 3),
		repeat(man(8), 2),
	)

	ctx := baseCtx()
	ctx.Tsumo = true
	ctx.Flowers = 3
	result, ok := Evaluate(hand, nil, ctx)
	if !ok {
		t.Fatal("hand did not evaluate as winning")
	}
	// 10 base + 1 menzen + 1 tanyao + 3 flowers + 1 tsumo + 1 concealed.
	if result.Points != 17 {
		t.Fatalf("points = %d, want 17", result.Points)
	}

	// The same hand won by ron from an open pung loses the concealment
	// bonuses but keeps the pattern.
	open := []Meld{{Kind: MeldPung, Tile: pin(6), From: 0}}
	openHand := concat(
		tiles(man(2), man(3), man(4)),
		tiles(man(5), man(6), man(7)),
		tiles(pin(3), pin(4), pin(5)),
		repeat(man(8), 2),
	)
	ctx = baseCtx()
	ctx.Flowers = 3
	result, ok = Evaluate(openHand, open, ctx)
	if !ok {
		t.Fatal("open hand did not evaluate as winning")
	}
	if result.Points != 14 {
		t.Fatalf("open points = %d, want 14", result.Points)
	}
}

func TestEvaluateSevenHonorKinds(t *testing.T) {
	hand := concat(
		repeat(wind(WindEast), 3),
		repeat(wind(WindSouth), 2),
		repeat(wind(WindWest), 2),
		repeat(wind(WindNorth), 2),
		repeat(dragon(DragonRed), 2),
		repeat(dragon(DragonGreen), 2),
		tiles(dragon(DragonWhite)),
	)
	if len(hand) != 14 {
		t.Fatalf("fixture size = %d", len(hand))
	}

	result, ok := Evaluate(hand, nil, baseCtx())
	if !ok {
		t.Fatal("seven honor kinds hand did not win")
	}
	got := yakuNames(result)
	if got["seven_honor_kinds"] != 1 {
		t.Fatalf("yaku = %v, want seven_honor_kinds", got)
	}
	if result.Points != 14 {
		t.Fatalf("points = %d, want 14", result.Points)
	}

	// A meld disqualifies the special shape.
	short := concat(
		repeat(wind(WindEast), 3),
		repeat(wind(WindSouth), 2),
		repeat(wind(WindWest), 2),
		repeat(wind(WindNorth), 2),
		repeat(dragon(DragonGreen), 2),
	)
	if _, ok := Evaluate(short, []Meld{{Kind: MeldPung, Tile: dragon(DragonRed), From: 1}}, baseCtx()); ok {
		t.Fatal("special shape accepted with an exposed meld")
	}

	// Missing a kind is not a win.
	missing := concat(
		repeat(wind(WindEast), 3),
		repeat(wind(WindSouth), 3),
		repeat(wind(WindWest), 2),
		repeat(wind(WindNorth), 2),
		repeat(dragon(DragonRed), 2),
		repeat(dragon(DragonGreen), 2),
	)
	if _, ok := Evaluate(missing, nil, baseCtx()); ok {
		t.Fatal("six honor kinds accepted as a win")
	}
}

func TestEvaluateRonWithoutYakuFails(t *testing.T) {
	concealed := concat(
		tiles(man(4), man(5), man(6)),
		tiles(pin(2), pin(3), pin(4)),
		tiles(pin(6), pin(7), pin(8)),
		repeat(pin(9), 2),
	)
	melds := []Meld{{Kind: MeldPung, Tile: man(2), From: 3}}

	if _, ok := Evaluate(concealed, melds, baseCtx()); ok {
		t.Fatal("open hand with no yaku won by ron")
	}

	// The identical position on a tsumo is still no win: the hand is open,
	// so the tsumo fallback does not apply either.
	ctx := baseCtx()
	ctx.Tsumo = true
	if _, ok := Evaluate(concealed, melds, ctx); ok {
		t.Fatal("open hand with no yaku won by tsumo")
	}
}

func TestKongCountsAsTripleForYaku(t *testing.T) {
	concealed := concat(
		tiles(man(2), man(3), man(4)),
		tiles(pin(4), pin(5), pin(6)),
		tiles(pin(6), pin(7), pin(8)),
		repeat(man(9), 2),
	)
	melds := []Meld{{Kind: MeldClosedKong, Tile: dragon(DragonRed), From: -1}}

	ctx := baseCtx()
	ctx.Tsumo = true
	result, ok := Evaluate(concealed, melds, ctx)
	if !ok {
		t.Fatal("hand with dragon kong did not win")
	}
	got := yakuNames(result)
	if got["dragon_triple"] != 1 {
		t.Fatalf("yaku = %v, want dragon_triple", got)
	}
	// Closed kongs keep the hand concealed.
	if got["menzen_tsumo"] != 1 {
		t.Fatalf("yaku = %v, want menzen_tsumo", got)
	}
}

package nakama

import (
	"testing"

	"kmahjong/internal/domain"
)

func TestParseDiscard(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    domain.Tile
		wantErr bool
	}{
		{
			name: "NumberTile",
			data: `{"tile":"man-3"}`,
			want: domain.Tile{Suit: domain.SuitMan, Rank: 3},
		},
		{
			name: "WindTile",
			data: `{"tile":"wind-1"}`,
			want: domain.Tile{Suit: domain.SuitWind, Rank: domain.WindEast},
		},
		{
			name:    "UnknownSuit",
			data:    `{"tile":"sword-3"}`,
			wantErr: true,
		},
		{
			name:    "RankOutOfRange",
			data:    `{"tile":"pin-0"}`,
			wantErr: true,
		},
		{
			name:    "NotJSON",
			data:    `tile=man-3`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got, err := parseDiscard([]byte(test.data))
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDiscard() error: %v", err)
			}
			if got != test.want {
				t.Fatalf("parseDiscard() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestParseKong(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    domain.KongOption
		wantErr bool
	}{
		{
			name: "ClosedKong",
			data: `{"kind":"closed_kong","tile":"pin-7"}`,
			want: domain.KongOption{Kind: domain.MeldClosedKong, Tile: domain.Tile{Suit: domain.SuitPin, Rank: 7}},
		},
		{
			name: "AddedKong",
			data: `{"kind":"added_kong","tile":"dragon-1"}`,
			want: domain.KongOption{Kind: domain.MeldAddedKong, Tile: domain.Tile{Suit: domain.SuitDragon, Rank: domain.DragonRed}},
		},
		{
			name:    "OpenKongNotSelfDeclarable",
			data:    `{"kind":"open_kong","tile":"pin-7"}`,
			wantErr: true,
		},
		{
			name:    "BadTile",
			data:    `{"kind":"closed_kong","tile":"pin-77"}`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got, err := parseKong([]byte(test.data))
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseKong() error: %v", err)
			}
			if got != test.want {
				t.Fatalf("parseKong() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestParseCallResponse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    domain.CallKind
		wantErr bool
	}{
		{name: "Pass", data: `{"call":"pass"}`, want: domain.CallPass},
		{name: "Pung", data: `{"call":"pung"}`, want: domain.CallPung},
		{name: "Kong", data: `{"call":"kong"}`, want: domain.CallKong},
		{name: "Ron", data: `{"call":"ron"}`, want: domain.CallRon},
		{name: "Unknown", data: `{"call":"chow"}`, wantErr: true},
		{name: "NotJSON", data: `ron`, wantErr: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got, err := parseCallResponse([]byte(test.data))
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCallResponse() error: %v", err)
			}
			if got != test.want {
				t.Fatalf("parseCallResponse() = %v, want %v", got, test.want)
			}
		})
	}
}

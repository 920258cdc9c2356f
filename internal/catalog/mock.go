package catalog

import "github.com/sakif/manga-match/internal/model"

// mockComics is served when AniList cannot be reached.
func mockComics() []model.Comic {
	return []model.Comic{
		{
			ID:          1,
			Title:       "One Piece",
			CoverImage:  "https://s4.anilist.co/file/anilistcdn/media/manga/cover/medium/bx13-5pFWB2e0n2n8.jpg",
			Rating:      "8.7",
			Chapters:    "1100+",
			Status:      "RELEASING",
			Format:      "MANGA",
			Genres:      []string{"Action", "Adventure", "Comedy", "Drama", "Fantasy"},
			Description: "Follow Monkey D. Luffy and his pirate crew as they search for the world's ultimate treasure...",
		},
		{
			ID:          2,
			Title:       "Naruto",
			CoverImage:  "https://s4.anilist.co/file/anilistcdn/media/manga/cover/medium/bx44-nWcJgLvAM6pV.jpg",
			Rating:      "8.2",
			Chapters:    "700",
			Status:      "FINISHED",
			Format:      "MANGA",
			Genres:      []string{"Action", "Adventure", "Fantasy"},
			Description: "Naruto Uzumaki, a young ninja who seeks recognition from his peers and dreams of becoming the Hokage...",
		},
		{
			ID:          3,
			Title:       "Bleach",
			CoverImage:  "https://s4.anilist.co/file/anilistcdn/media/manga/cover/medium/bx51-c4TGro2T71cE.jpg",
			Rating:      "7.8",
			Chapters:    "686",
			Status:      "FINISHED",
			Format:      "MANGA",
			Genres:      []string{"Action", "Adventure", "Supernatural"},
			Description: "High school student Ichigo Kurosaki gains the powers of a Soul Reaper and must defend humans from evil spirits...",
		},
		{
			ID:          4,
			Title:       "Demon Slayer",
			CoverImage:  "https://s4.anilist.co/file/anilistcdn/media/manga/cover/medium/bx101922-wYSikHVxDuMA.jpg",
			Rating:      "8.4",
			Chapters:    "205",
			Status:      "FINISHED",
			Format:      "MANGA",
			Genres:      []string{"Action", "Historical", "Supernatural"},
			Description: "After his family is slaughtered, Tanjiro Kamado becomes a demon slayer to cure his sister...",
		},
		{
			ID:          5,
			Title:       "Jujutsu Kaisen",
			CoverImage:  "https://s4.anilist.co/file/anilistcdn/media/manga/cover/medium/bx113138-CQCqF4vBvGX7.jpg",
			Rating:      "8.5",
			Chapters:    "247+",
			Status:      "RELEASING",
			Format:      "MANGA",
			Genres:      []string{"Action", "Fantasy", "Supernatural"},
			Description: "Yuji Itadori swallows a cursed object and becomes host to a powerful curse, entering the world of jujutsu sorcerers...",
		},
	}
}

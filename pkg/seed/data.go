package seed

import "github.com/booketlist/booketlist/pkg/models"

type authorSeed struct {
	FirstName string
	LastName  string
	Biography string
	Books     []bookSeed
}

type bookSeed struct {
	Title       string
	Genre       string
	Description string
}

type userSeed struct {
	Name     string
	LastName string
	Email    string
}

type ratingSeed struct {
	Email  string
	Title  string
	Score  int
	Review string
}

type shelfSeed struct {
	Email  string
	Title  string
	Status string
}

var authors = []authorSeed{
	{
		FirstName: "Miguel de", LastName: "Cervantes",
		Biography: "Spanish writer, author of Don Quixote.",
		Books: []bookSeed{
			{"Don Quixote", "Clásicos", "A man of La Mancha sets out to revive chivalry."},
		},
	},
	{
		FirstName: "Jane", LastName: "Austen",
		Biography: "English novelist known for her social commentary.",
		Books: []bookSeed{
			{"Pride and Prejudice", "Clásicos", "Elizabeth Bennet and Mr. Darcy misjudge each other."},
			{"Emma", "Clásicos", "A young matchmaker meddles in her neighbours' lives."},
			{"Persuasion", "Romance", "A second chance at a broken engagement."},
		},
	},
	{
		FirstName: "Frank", LastName: "Herbert",
		Biography: "American science fiction author.",
		Books: []bookSeed{
			{"Dune", "Ciencia Ficción", "A noble family is handed the desert planet Arrakis."},
		},
	},
	{
		FirstName: "Isaac", LastName: "Asimov",
		Biography: "Writer and biochemist, author of the Foundation series.",
		Books: []bookSeed{
			{"Foundation", "Ciencia Ficción", "A mathematician foresees the fall of the Galactic Empire."},
			{"I, Robot", "Ciencia Ficción", "Stories about the Three Laws of Robotics."},
		},
	},
	{
		FirstName: "Ursula K.", LastName: "Le Guin",
		Biography: "American author of science fiction and fantasy.",
		Books: []bookSeed{
			{"The Left Hand of Darkness", "Ciencia Ficción", "An envoy visits a world without fixed sexes."},
			{"A Wizard of Earthsea", "Fantasía", "A young mage unleashes a shadow upon the world."},
		},
	},
	{
		FirstName: "Gabriel García", LastName: "Márquez",
		Biography: "Colombian novelist, Nobel Prize in Literature 1982.",
		Books: []bookSeed{
			{"One Hundred Years of Solitude", "Realismo Mágico", "Seven generations of the Buendía family in Macondo."},
			{"Love in the Time of Cholera", "Romance", "A love that waits more than fifty years."},
		},
	},
	{
		FirstName: "Jorge Luis", LastName: "Borges",
		Biography: "Argentine writer of short stories and essays.",
		Books: []bookSeed{
			{"Ficciones", "Cuentos", "Labyrinths, libraries and mirrors."},
		},
	},
	{
		FirstName: "Yuval Noah", LastName: "Harari",
		Biography: "Israeli historian.",
		Books: []bookSeed{
			{"Sapiens", "No Ficción", "A brief history of humankind."},
		},
	},
}

var users = []userSeed{
	{"Ana", "García", "ana@booketlist.example"},
	{"Bruno", "Silva", "bruno@booketlist.example"},
	{"Carla", "Méndez", "carla@booketlist.example"},
}

var ratings = []ratingSeed{
	{"ana@booketlist.example", "Dune", 5, "A world I keep coming back to."},
	{"ana@booketlist.example", "Foundation", 4, ""},
	{"ana@booketlist.example", "Emma", 4, "Funnier than I expected."},
	{"bruno@booketlist.example", "Dune", 4, "Slow start, great payoff."},
	{"bruno@booketlist.example", "One Hundred Years of Solitude", 5, "Unforgettable."},
	{"carla@booketlist.example", "Pride and Prejudice", 5, ""},
	{"carla@booketlist.example", "Ficciones", 3, "Brilliant but dense."},
}

var shelves = []shelfSeed{
	{"ana@booketlist.example", "I, Robot", models.ReadingStatusReading},
	{"ana@booketlist.example", "Sapiens", models.ReadingStatusWantToRead},
	{"bruno@booketlist.example", "A Wizard of Earthsea", models.ReadingStatusWantToRead},
	{"carla@booketlist.example", "Persuasion", models.ReadingStatusReading},
	{"carla@booketlist.example", "Love in the Time of Cholera", models.ReadingStatusWantToRead},
}

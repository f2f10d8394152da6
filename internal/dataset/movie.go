package dataset

// Movie is one record of the movie statistics dataset. Title and Year are
// required; the remaining fields may be absent in the source CSV and default
// to their zero values.
type Movie struct {
	Rank            int
	Title           string
	Genre           string
	Description     string
	Director        string
	Actors          string
	Year            int
	RuntimeMinutes  int
	Rating          float64
	Votes           int
	RevenueMillions float64
	Metascore       int
}

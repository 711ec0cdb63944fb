package response

const (
	ServerError = "Server error, try again later"
	//----------------------
	CatalogUnavailable = "Movie catalog is unavailable, try again later"
	DatabaseStarting   = "Database is not accepting connections, try again later"
	//----------------------
	MoviesNotFound         = "Movies not found"
	MovieNotFound          = "Movie not found"
	GenresNotFound         = "Genres not found"
	FavoriteNotFound       = "Movie not found in favorites"
	WatchlistItemNotFound  = "Movie not found in watchlist"
	MovieNotFoundInCatalog = "Movie not found in catalog"
	//----------------------
	InvalidToken    = "Invalid/Stale Token"
	InvalidMovieId  = "Invalid movie id"
	InvalidPage     = "Invalid page"
	QueryRequired   = "Search query is required"
	InvalidTimeSpan = "Time window must be 'day' or 'week'"
	//----------------------
	BadRequestBody = "Incorrect request body"
	//----------------------
	AlreadyInFavorites = "Movie already in favorites"
	AlreadyInWatchlist = "Movie already in watchlist"
	//----------------------
)

package handler

import (
	"movie_recommendation/api/middleware"
	"movie_recommendation/internal/service"
	"movie_recommendation/model"
	"movie_recommendation/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type IUserHandler interface {
	AddFavorite(c *fiber.Ctx) error
	RemoveFavorite(c *fiber.Ctx) error
	GetFavorites(c *fiber.Ctx) error
	RateMovie(c *fiber.Ctx) error
	GetRatings(c *fiber.Ctx) error
	AddToWatchlist(c *fiber.Ctx) error
	RemoveFromWatchlist(c *fiber.Ctx) error
	GetWatchlist(c *fiber.Ctx) error
}

type UserHandler struct {
	userService service.IUserService
	viewer      movieViewer
}

func NewUserHandler(userService service.IUserService, movieService service.IMovieService) *UserHandler {
	return &UserHandler{
		userService: userService,
		viewer:      movieViewer{movieService: movieService, userService: userService},
	}
}

//------------------------------------------
//------------------------------------------

func (m *UserHandler) AddFavorite(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	var req model.MovieMarkReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}

	favorite, err := m.userService.AddFavorite(c.UserContext(), userId, req)
	if err != nil {
		return responseServiceError(c, err, response.MovieNotFoundInCatalog)
	}
	return response.ResponseCreated(c, model.FavoriteView{
		Id:        favorite.Id,
		CreatedAt: favorite.CreatedAt,
		Movie:     m.viewer.view(c, favorite.Movie),
	})
}

func (m *UserHandler) RemoveFavorite(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	favoriteId, err := c.ParamsInt("id", 0)
	if err != nil || favoriteId <= 0 {
		return response.ResponseError(c, "Invalid favorite id", fiber.StatusBadRequest)
	}

	if err = m.userService.RemoveFavorite(c.UserContext(), userId, int64(favoriteId)); err != nil {
		return responseServiceError(c, err, response.FavoriteNotFound)
	}
	return response.ResponseNoContent(c)
}

func (m *UserHandler) GetFavorites(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	page, pageSize := pageParams(c)

	favorites, count, err := m.userService.ListFavorites(c.UserContext(), userId, page, pageSize)
	if err != nil {
		return responseServiceError(c, err, response.FavoriteNotFound)
	}
	movies := make([]model.Movie, len(favorites))
	for i := range favorites {
		movies[i] = favorites[i].Movie
	}
	views := m.viewer.views(c, movies)
	results := make([]model.FavoriteView, len(favorites))
	for i := range favorites {
		results[i] = model.FavoriteView{Id: favorites[i].Id, CreatedAt: favorites[i].CreatedAt, Movie: views[i]}
	}
	return response.ResponseOKWithPage(c, int(count), page, totalPages(count, pageSize), results)
}

//------------------------------------------
//------------------------------------------

func (m *UserHandler) RateMovie(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	var req model.RateMovieReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}

	rating, err := m.userService.RateMovie(c.UserContext(), userId, req)
	if err != nil {
		return responseServiceError(c, err, response.MovieNotFoundInCatalog)
	}
	return response.ResponseOKWithData(c, model.RatingView{
		Id:        rating.Id,
		Rating:    rating.Rating,
		Review:    rating.Review,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
		Movie:     m.viewer.view(c, rating.Movie),
	})
}

func (m *UserHandler) GetRatings(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	page, pageSize := pageParams(c)

	ratings, count, err := m.userService.ListRatings(c.UserContext(), userId, page, pageSize)
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}
	movies := make([]model.Movie, len(ratings))
	for i := range ratings {
		movies[i] = ratings[i].Movie
	}
	views := m.viewer.views(c, movies)
	results := make([]model.RatingView, len(ratings))
	for i, r := range ratings {
		results[i] = model.RatingView{
			Id:        r.Id,
			Rating:    r.Rating,
			Review:    r.Review,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Movie:     views[i],
		}
	}
	return response.ResponseOKWithPage(c, int(count), page, totalPages(count, pageSize), results)
}

//------------------------------------------
//------------------------------------------

func (m *UserHandler) AddToWatchlist(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	var req model.MovieMarkReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}

	item, err := m.userService.AddToWatchlist(c.UserContext(), userId, req)
	if err != nil {
		return responseServiceError(c, err, response.MovieNotFoundInCatalog)
	}
	return response.ResponseCreated(c, model.WatchlistView{
		Id:        item.Id,
		CreatedAt: item.CreatedAt,
		Movie:     m.viewer.view(c, item.Movie),
	})
}

func (m *UserHandler) RemoveFromWatchlist(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	itemId, err := c.ParamsInt("id", 0)
	if err != nil || itemId <= 0 {
		return response.ResponseError(c, "Invalid watchlist id", fiber.StatusBadRequest)
	}

	if err = m.userService.RemoveFromWatchlist(c.UserContext(), userId, int64(itemId)); err != nil {
		return responseServiceError(c, err, response.WatchlistItemNotFound)
	}
	return response.ResponseNoContent(c)
}

func (m *UserHandler) GetWatchlist(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	page, pageSize := pageParams(c)

	items, count, err := m.userService.ListWatchlist(c.UserContext(), userId, page, pageSize)
	if err != nil {
		return responseServiceError(c, err, response.WatchlistItemNotFound)
	}
	movies := make([]model.Movie, len(items))
	for i := range items {
		movies[i] = items[i].Movie
	}
	views := m.viewer.views(c, movies)
	results := make([]model.WatchlistView, len(items))
	for i := range items {
		results[i] = model.WatchlistView{Id: items[i].Id, CreatedAt: items[i].CreatedAt, Movie: views[i]}
	}
	return response.ResponseOKWithPage(c, int(count), page, totalPages(count, pageSize), results)
}

//------------------------------------------
//------------------------------------------

func pageParams(c *fiber.Ctx) (int, int) {
	page := max(c.QueryInt("page", 1), 1)
	pageSize := c.QueryInt("pageSize", service.DefaultPageSize)
	if pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}
	return page, min(pageSize, service.MaxPageSize)
}

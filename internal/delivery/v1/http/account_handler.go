package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type AccountHandler struct {
	accountUC usecase.AccountUC
	authCfg   *cfg.AuthCfg
	secure    bool
	logger    logger.Logger
}

func NewAccountHandler(accountUC usecase.AccountUC, authCfg *cfg.AuthCfg, secure bool, logger logger.Logger) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, authCfg: authCfg, secure: secure, logger: logger}
}

// register
//
//	@Summary		Регистрация
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterReq	true	"Данные учётной записи"
//	@Success		201		{object}	AuthRes
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Email уже занят"
//	@Router			/v1/account/register [post]
func (a *AccountHandler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.accountUC.Register(r.Context(), &usecase.RegisterReq{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	a.setAuthCookie(w, res.Token)
	WriteSuccess(w, http.StatusCreated, toAuthRes(res))
}

// login
//
//	@Summary		Вход
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginReq	true	"Email и пароль"
//	@Success		200		{object}	AuthRes
//	@Failure		401		{object}	ErrorResponse	"Неверный логин или пароль"
//	@Router			/v1/account/login [post]
func (a *AccountHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.accountUC.Login(r.Context(), &usecase.LoginReq{Email: req.Email, Password: req.Password})
	if err != nil {
		WriteError(w, err)
		return
	}

	a.setAuthCookie(w, res.Token)
	WriteSuccess(w, http.StatusOK, toAuthRes(res))
}

// logout
//
//	@Summary		Выход
//	@Tags			account
//	@Success		204
//	@Router			/v1/account/logout [post]
func (a *AccountHandler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.authCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// becomeSeller
//
//	@Summary		Стать продавцом
//	@Description	Создаёт магазин и выдаёт роль Seller; повторный вызов возвращает существующий магазин
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		BecomeSellerReq	true	"Магазин"
//	@Success		200		{object}	AuthRes
//	@Failure		401		{object}	ErrorResponse
//	@Router			/v1/account/become-seller [post]
func (a *AccountHandler) becomeSeller(w http.ResponseWriter, r *http.Request) {
	var req BecomeSellerReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.accountUC.BecomeSeller(r.Context(), actorFrom(r.Context()), &usecase.BecomeSellerReq{
		ShopName:    req.ShopName,
		Description: req.Description,
	})
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	a.setAuthCookie(w, res.Token)
	WriteSuccess(w, http.StatusOK, toAuthRes(res))
}

func (a *AccountHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.authCfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.authCfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

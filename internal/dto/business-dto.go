package dto

// UpdateBusinessDetailRequest is an allow-list: only the fields below can be
// changed through the detail endpoint, and only when present in the request.
// Credential hash, tokens and the verified flag are deliberately not here.
type UpdateBusinessDetailRequest struct {
	Name         *string `json:"name" form:"name"`
	ContactName  *string `json:"contact_name" form:"contact_name"`
	WebsiteURL   *string `json:"website_url" form:"website_url"`
	InstagramURL *string `json:"instagram_url" form:"instagram_url"`
	ThemeColor   *string `json:"theme_color" form:"theme_color"`
}

type SetThemeColorRequest struct {
	ThemeColor string `json:"theme_color" validate:"required"`
}

package dto

type ProfileOutput struct {
	Username    string  `json:"username"`
	ProfileName *string `json:"profile_name"`
	AvatarPath  *string `json:"avatar_path"`
}

type UpdateEmailInput struct {
	Email string `json:"email"`
}

type UpdateUsernameInput struct {
	Username string `json:"username"`
}

type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateProfileNameInput struct {
	ProfileName string `json:"profile_name"`
}

type UpdateRoleInput struct {
	Role string `json:"role"`
}

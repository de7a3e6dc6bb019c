package validators

type SignupRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=50"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6,max=128"`
	Phone     string   `json:"phone" validate:"required,len=10,numeric"`
	Gender    string   `json:"gender" validate:"omitempty,gender"`
	Community []string `json:"community" validate:"omitempty,dive,min=1,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest enumerates the only profile fields a user may change.
// Password, email, trust score, and verification flags have no field here
// and therefore cannot be smuggled through an update.
type ProfileUpdateRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=2,max=50"`
	Phone          *string  `json:"phone" validate:"omitempty,len=10,numeric"`
	Gender         *string  `json:"gender" validate:"omitempty,gender"`
	Community      []string `json:"community" validate:"omitempty,dive,min=1,max=100"`
	ProfilePicture *string  `json:"profile_picture" validate:"omitempty,url"`
}

func ValidateSignup(req *SignupRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateLogin(req *LoginRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateProfileUpdate(req *ProfileUpdateRequest) ValidationErrors {
	return ValidateStruct(req)
}

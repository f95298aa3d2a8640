package bootstrap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	authsvc "github.com/dropDatabas3/tandem/internal/http/services/auth"
)

type seedFile struct {
	Users []struct {
		Email            string `yaml:"email"`
		Password         string `yaml:"password"`
		FullName         string `yaml:"full_name"`
		Bio              string `yaml:"bio"`
		NativeLanguage   string `yaml:"native_language"`
		LearningLanguage string `yaml:"learning_language"`
		Location         string `yaml:"location"`
	} `yaml:"users"`
}

// LoadSeedFile lee un YAML con la lista de usuarios demo:
//
//	users:
//	  - email: maria@tandem.dev
//	    password: demo123
//	    full_name: María
//	    native_language: spanish
//	    learning_language: english
//	    bio: Hola
//	    location: Madrid
//
// Si native_language viene seteado el usuario se crea ya onboardeado.
func LoadSeedFile(path string) ([]SeedUser, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("bootstrap: parse %s: %w", path, err)
	}
	out := make([]SeedUser, 0, len(f.Users))
	for _, u := range f.Users {
		su := SeedUser{Email: u.Email, Password: u.Password, FullName: u.FullName}
		if u.NativeLanguage != "" {
			su.Profile = &authsvc.OnboardInput{
				FullName:         u.FullName,
				Bio:              u.Bio,
				NativeLanguage:   u.NativeLanguage,
				LearningLanguage: u.LearningLanguage,
				Location:         u.Location,
			}
		}
		out = append(out, su)
	}
	return out, nil
}

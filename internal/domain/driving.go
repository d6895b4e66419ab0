package domain

var legalDrivingAge = map[string]int{
	"US": 16,
	"UK": 17,
}

func CanDrive(age int, countryCode string) Outcome[bool] {
	legal, ok := legalDrivingAge[countryCode]
	if !ok {
		return Fail[bool](MsgInvalidCountryCode)
	}
	return Ok(age >= legal)
}

package dataset

// Raw column names of the Seoul bike sharing demand CSV.
const (
	RawDate            = "Date"
	RawRentedBikeCount = "Rented Bike Count"
	RawHour            = "Hour"
	RawTemperature     = "Temperature(°C)"
	RawHumidity        = "Humidity(%)"
	RawWindSpeed       = "Wind speed (m/s)"
	RawVisibility      = "Visibility (10m)"
	RawDewPoint        = "Dew point temperature(°C)"
	RawSolarRadiation  = "Solar Radiation (MJ/m2)"
	RawRainfall        = "Rainfall(mm)"
	RawSnowfall        = "Snowfall (cm)"
	RawSeasons         = "Seasons"
	RawHoliday         = "Holiday"
	RawFunctioningDay  = "Functioning Day"
)

// Canonical column names after feature engineering.
const (
	Target         = RawRentedBikeCount
	Hour           = RawHour
	Temperature    = "Temperature"
	Humidity       = "Humidity"
	WindSpeed      = "Wind speed"
	Visibility     = "Visibility"
	DewPoint       = "Dew point temperature"
	Radiation      = "Radiation"
	Rainfall       = "Rainfall"
	Snowfall       = "Snowfall"
	Seasons        = RawSeasons
	Holiday        = RawHoliday
	FunctioningDay = RawFunctioningDay
	Year           = "Year"
	Month          = "Month"
	Day            = "Day"
	Weekday        = "Weekday"
)

// Season and flag values.
const (
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonAutumn = "Autumn"

	HolidayYes = "Holiday"
	HolidayNo  = "No Holiday"

	FunctioningYes = "Yes"
	FunctioningNo  = "No"
)

// SeasonOrder lists the season domain in calendar order.
var SeasonOrder = []string{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

package mobilemoney

// countryPhoneLengths gives the expected national number length per
// country (digits, without country prefix).
var countryPhoneLengths = map[string]int{
	"CI": 10,
	"SN": 9,
	"KE": 10,
	"GH": 10,
	"UG": 10,
	"TZ": 10,
	"CM": 9,
	"BJ": 10,
}

// defaultProviders is the built-in operator registry. Fee and limit
// schedules mirror each operator's published schedule.
var defaultProviders = []Provider{
	{
		ID: "orange_money_ci", Name: "Orange Money", CountryCode: "CI", Currency: "XOF",
		FeePercent: 1.0, FeeMinimum: 25, FeeMaximum: 5000,
		MinAmount: 100, MaxAmount: 1000000, DailyLimit: 2000000, MonthlyLimit: 10000000,
		PhonePrefixes:        []string{"07", "08", "09"},
		RequiresConfirmation: true,
	},
	{
		ID: "mtn_momo_ci", Name: "MTN Mobile Money", CountryCode: "CI", Currency: "XOF",
		FeePercent: 1.0, FeeMinimum: 25, FeeMaximum: 5000,
		MinAmount: 100, MaxAmount: 1000000, DailyLimit: 2000000, MonthlyLimit: 10000000,
		PhonePrefixes:        []string{"05", "04"},
		RequiresConfirmation: true,
	},
	{
		ID: "wave_ci", Name: "Wave", CountryCode: "CI", Currency: "XOF",
		FeePercent: 0.5, FeeMinimum: 10, FeeMaximum: 2000,
		MinAmount: 100, MaxAmount: 1500000, DailyLimit: 3000000, MonthlyLimit: 15000000,
		PhonePrefixes:        []string{"01", "05", "07"},
		RequiresConfirmation: true,
	},
	{
		ID: "orange_money_sn", Name: "Orange Money", CountryCode: "SN", Currency: "XOF",
		FeePercent: 1.0, FeeMinimum: 25, FeeMaximum: 5000,
		MinAmount: 100, MaxAmount: 1000000, DailyLimit: 2000000, MonthlyLimit: 10000000,
		PhonePrefixes:        []string{"77", "78"},
		RequiresConfirmation: true,
	},
	{
		ID: "wave_sn", Name: "Wave", CountryCode: "SN", Currency: "XOF",
		FeePercent: 0.5, FeeMinimum: 10, FeeMaximum: 2000,
		MinAmount: 100, MaxAmount: 1500000, DailyLimit: 3000000, MonthlyLimit: 15000000,
		PhonePrefixes:        []string{"70", "76"},
		RequiresConfirmation: true,
	},
	{
		ID: "free_money_sn", Name: "Free Money", CountryCode: "SN", Currency: "XOF",
		FeePercent: 0.8, FeeMinimum: 20, FeeMaximum: 3000,
		MinAmount: 100, MaxAmount: 500000, DailyLimit: 1000000, MonthlyLimit: 5000000,
		PhonePrefixes:        []string{"76"},
		RequiresConfirmation: true,
	},
	{
		ID: "mpesa_ke", Name: "M-Pesa", CountryCode: "KE", Currency: "KES",
		FeePercent: 1.2, FeeMinimum: 10, FeeMaximum: 1100,
		MinAmount: 10, MaxAmount: 250000, DailyLimit: 500000, MonthlyLimit: 3000000,
		PhonePrefixes:        []string{"07", "01"},
		RequiresConfirmation: false,
	},
	{
		ID: "mtn_momo_gh", Name: "MTN Mobile Money", CountryCode: "GH", Currency: "GHS",
		FeePercent: 1.0, FeeMinimum: 0.5, FeeMaximum: 50,
		MinAmount: 1, MaxAmount: 10000, DailyLimit: 20000, MonthlyLimit: 100000,
		PhonePrefixes:        []string{"024", "054", "055"},
		RequiresConfirmation: true,
	},
	{
		ID: "airtel_ug", Name: "Airtel Money", CountryCode: "UG", Currency: "UGX",
		FeePercent: 1.5, FeeMinimum: 500, FeeMaximum: 18000,
		MinAmount: 500, MaxAmount: 5000000, DailyLimit: 10000000, MonthlyLimit: 40000000,
		PhonePrefixes:        []string{"070", "075"},
		RequiresConfirmation: true,
	},
	{
		ID: "mpesa_tz", Name: "M-Pesa", CountryCode: "TZ", Currency: "TZS",
		FeePercent: 1.2, FeeMinimum: 200, FeeMaximum: 12000,
		MinAmount: 500, MaxAmount: 5000000, DailyLimit: 10000000, MonthlyLimit: 50000000,
		PhonePrefixes:        []string{"074", "075", "076"},
		RequiresConfirmation: false,
	},
	{
		ID: "orange_money_cm", Name: "Orange Money", CountryCode: "CM", Currency: "XAF",
		FeePercent: 1.0, FeeMinimum: 25, FeeMaximum: 5000,
		MinAmount: 100, MaxAmount: 1000000, DailyLimit: 2000000, MonthlyLimit: 10000000,
		PhonePrefixes:        []string{"69", "65"},
		RequiresConfirmation: true,
	},
	{
		ID: "mtn_momo_bj", Name: "MTN Mobile Money", CountryCode: "BJ", Currency: "XOF",
		FeePercent: 1.0, FeeMinimum: 25, FeeMaximum: 5000,
		MinAmount: 100, MaxAmount: 1000000, DailyLimit: 2000000, MonthlyLimit: 10000000,
		PhonePrefixes:        []string{"97", "96", "61"},
		RequiresConfirmation: true,
	},
}

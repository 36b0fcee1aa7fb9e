package utils

// FeeChart is the institute's published monthly fee per board and class.
// It is the only source of a student's monthly fee; registration snapshots
// the value and it is never user-editable afterwards.
var FeeChart = map[string]map[string]float64{
	"Maharashtra": {
		"1": 250, "2": 250, "3": 300, "4": 450, "5": 400,
		"6": 450, "7": 500, "8": 550, "9": 650, "10": 900,
	},
	"CBSE": {
		"1": 350, "2": 350, "3": 350, "4": 400, "5": 550,
		"6": 600, "7": 700, "8": 800, "9": 1000, "10": 1500,
	},
}

// GetFee returns the monthly fee for a board and class, or false when the
// combination is not configured.
func GetFee(board, class string) (float64, bool) {
	classes, ok := FeeChart[board]
	if !ok {
		return 0, false
	}
	fee, ok := classes[class]
	return fee, ok
}

func IsValidBoardClass(board, class string) bool {
	_, ok := GetFee(board, class)
	return ok
}

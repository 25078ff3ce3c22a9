package generator

var maleFirstNames = []string{
	"James", "John", "Robert", "Michael", "William", "David", "Richard", "Joseph",
	"Thomas", "Charles", "Daniel", "Matthew", "Anthony", "Mark", "Steven", "Paul",
	"Andrew", "Joshua", "Kevin", "Brian", "George", "Edward", "Ronald", "Timothy",
	"Jason", "Jeffrey", "Ryan", "Jacob", "Gary", "Nicholas", "Eric", "Jonathan",
}

var femaleFirstNames = []string{
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica",
	"Sarah", "Karen", "Lisa", "Nancy", "Betty", "Margaret", "Sandra", "Ashley",
	"Kimberly", "Emily", "Donna", "Michelle", "Carol", "Amanda", "Dorothy", "Melissa",
	"Deborah", "Stephanie", "Rebecca", "Sharon", "Laura", "Cynthia", "Kathleen", "Amy",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
}

// modelWords seed model names such as "Summit-482".
var modelWords = []string{
	"Summit", "Ridge", "Vector", "Pulse", "Nova", "Orbit", "Falcon", "Comet",
	"Atlas", "Zenith", "Echo", "Vertex", "Canyon", "Drift", "Aero", "Prism",
	"Storm", "Glide", "Spark", "Quest", "Fusion", "Nimbus", "Apex", "Terra",
}

// BicycleBrands are the brands bicycles are drawn from.
var BicycleBrands = []string{"Trek", "Specialized", "Giant", "Cannondale", "Scott", "Bianchi", "Merida", "Cube"}

// LaptopBrands are the brands laptops are drawn from.
var LaptopBrands = []string{"Dell", "HP", "Lenovo", "Apple", "Asus", "Acer", "MSI", "Razer"}

// RAMSizes and VRAMSizes are the memory sizes in GB laptops are drawn from.
var (
	RAMSizes  = []int{4, 8, 16, 32, 64, 128}
	VRAMSizes = []int{2, 4, 6, 8, 12, 16}
)

// Year ranges, inclusive.
const (
	BicycleMinYear = 2000
	BicycleMaxYear = 2025
	LaptopMinYear  = 2015
	LaptopMaxYear  = 2025
)

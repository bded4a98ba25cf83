package venue

// DefaultVenues is the production venue list.
func DefaultVenues() []Venue {
	return []Venue{
		{1, "Mandala Cancún", Cancun},
		{2, "The City", Cancun},
		{3, "Mandala Beach Day", Cancun},
		{4, "Mandala Beach Night", Cancun},
		{6, "D'Cave", Cancun},
		{7, "Señor Frogs Cancún", Cancun},
		{9, "La Vaquita Cancún", Cancun},
		{22, "Abolengo Cancún", Cancun},
		{32, "Rakata Cancún", Cancun},
		{53, "HOF", Cancun},
		{92, "Reset", Cancun},

		{36, "Tehmplo", Tulum},
		{37, "Bonbonniere", Tulum},
		{38, "Vagalume", Tulum},
		{41, "Bagatelle Tulum", Tulum},
		{51, "Tehmplo F&F", Tulum},

		{14, "Mandala Vallarta", Vallarta},
		{15, "La Santa Vallarta", Vallarta},
		{16, "La Vaquita Vallarta", Vallarta},
		{17, "Sky", Vallarta},
		{24, "Señor Frogs Vallarta", Vallarta},
		{25, "Biblioteca", Vallarta},
		{27, "Chicabal", Vallarta},
		{33, "Mita Sounds", Vallarta},
		{34, "Majahuitas", Vallarta},
		{39, "Rakata Vallarta", Vallarta},
		{40, "Dorothy Vallarta", Vallarta},

		{18, "Mandala Los Cabos", Cabos},
		{20, "La Vaquita Los Cabos", Cabos},

		{10, "Mandala Playa", PlayaDelCarmen},
		{12, "La Vaquita Playa", PlayaDelCarmen},
		{13, "Abolengo Playa", PlayaDelCarmen},
		{29, "Santito", PlayaDelCarmen},
		{30, "Rakata Playa", PlayaDelCarmen},

		{55, "Houdinni Madrid", Madrid},
		{56, "Sala de Despecho", Madrid},

		{50, "Riviera Polanco", CDMX},
		{57, "Bagatelle CDMX", CDMX},

		{43, "Dorothy FNSM", FNSM},
		{44, "La Santa FNSM", FNSM},
		{45, "Mallet", FNSM},
		{46, "Rakata FNSM", FNSM},

		{35, "Nadim", Guadalajara},
		{42, "Dorothy GDL", Guadalajara},
		{52, "Spade", Guadalajara},
		{54, "Sra Tanaka", Guadalajara},

		{47, "BYU", Monterrey},
		{48, "Rakata MTY", Monterrey},
		{49, "Cosmo", Monterrey},
	}
}

// DefaultCatalog indexes DefaultVenues.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultVenues())
}

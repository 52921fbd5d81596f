package recipes

// SeedRecipes returns the built-in recipe bank used when no persisted recipes
// exist. Each call returns fresh copies.
func SeedRecipes() []Recipe {
	return []Recipe{
		{
			Name:   "Classic Margherita Pizza",
			Author: "James Croft",
			Ingredients: []string{
				"1 pizza dough ball",
				"½ cup pizza sauce",
				"1 cup shredded mozzarella cheese",
				"Fresh basil leaves",
				"Olive oil",
				"Salt and pepper to taste",
			},
			Steps: []string{
				"Preheat your oven to 475°F (245°C) and place a pizza stone inside to heat up.",
				"Roll out the pizza dough on a floured surface to your desired thickness.",
				"Spread the pizza sauce over the dough, leaving a small border around the edges.",
				"Sprinkle the shredded mozzarella cheese over the sauce.",
				"Bake the pizza on the preheated stone for 10-12 minutes or until the crust is golden and the cheese is bubbly.",
				"Remove the pizza from the oven and top with fresh basil leaves, a drizzle of olive oil, and salt and pepper to taste.",
			},
		},
		{
			Name:   "Eggs Benedict",
			Author: "James Croft",
			Ingredients: []string{
				"4 eggs",
				"2 English muffins, split",
				"4 slices Canadian bacon",
				"Hollandaise sauce",
				"Salt and pepper to taste",
				"Chopped parsley (for garnish)",
			},
			Steps: []string{
				"Fill a large saucepan with 2-3 inches of water and bring to a simmer.",
				"In a separate saucepan, heat the Hollandaise sauce over low heat, stirring occasionally.",
				"Toast the English muffins and cook the Canadian bacon in a skillet until heated through.",
				"Poach the eggs in the simmering water for 3-4 minutes until the whites are set but the yolks are still runny.",
				"Assemble the Eggs Benedict by placing a slice of Canadian bacon on each English muffin half, topping with a poached egg, and drizzling with Hollandaise sauce.",
				"Season with salt and pepper, and garnish with chopped parsley before serving.",
			},
		},
		{
			Name:   "Vegan Chocolate Cake",
			Author: "James Croft",
			Ingredients: []string{
				"1 ½ cups all-purpose flour",
				"1 cup organic cane sugar",
				"½ cup cocoa powder",
				"1 tsp baking soda",
				"½ tsp salt",
				"1 cup almond milk",
				"⅓ cup vegetable oil",
				"1 tbsp apple cider vinegar",
				"1 tsp vanilla extract",
			},
			Steps: []string{
				"Preheat your oven to 350°F (175°C) and grease an 8-inch round cake pan.",
				"In a large bowl, sift together flour, sugar, cocoa powder, baking soda, and salt.",
				"In a separate bowl, whisk almond milk, vegetable oil, apple cider vinegar, and vanilla extract.",
				"Pour the wet ingredients into the dry ingredients and mix until just combined.",
				"Pour the batter into the prepared pan and bake for 30-35 minutes or until a toothpick inserted in the center comes out clean.",
				"Let the cake cool in the pan for 10 minutes, then transfer to a wire rack to cool completely.",
			},
		},
		{
			Name:   "Spaghetti Bolognese",
			Author: "James Croft",
			Ingredients: []string{
				"400g spaghetti",
				"500g ground beef",
				"1 large onion, finely chopped",
				"3 cloves garlic, minced",
				"2 cans (400g each) diced tomatoes",
				"2 tbsp tomato paste",
				"100ml red wine (optional)",
				"1 tsp dried oregano",
				"1 tsp dried basil",
				"Salt and pepper to taste",
				"2 tbsp olive oil",
				"Grated Parmesan cheese (for serving)",
			},
			Steps: []string{
				"Cook the spaghetti according to package instructions until al dente. Drain and set aside.",
				"Heat olive oil in a large pan over medium heat. Add chopped onion and garlic; sauté until soft and translucent.",
				"Add ground beef and cook until browned, breaking it up with a spoon as it cooks.",
				"Stir in tomato paste and cook for 1-2 minutes to develop the flavor.",
				"Pour in diced tomatoes and red wine, then add oregano and basil. Season with salt and pepper.",
				"Bring the sauce to a simmer and let it cook for 20-30 minutes, stirring occasionally.",
				"Serve the sauce over spaghetti and top with grated Parmesan cheese.",
			},
		},
		{
			Name:   "Beef Stir-Fry with Vegetables",
			Author: "James Croft",
			Ingredients: []string{
				"400g beef sirloin, thinly sliced",
				"1 head broccoli, cut into florets",
				"1 red bell pepper, sliced",
				"1 yellow bell pepper, sliced",
				"2 carrots, julienned",
				"100g snap peas",
				"2 cloves garlic, minced",
				"1 tbsp fresh ginger, grated",
				"3 tbsp soy sauce",
				"1 tbsp sesame oil",
				"1 tsp cornstarch mixed with 2 tsp water",
				"2 tbsp vegetable oil",
				"Cooked rice (for serving)",
			},
			Steps: []string{
				"Marinate the beef slices in 2 tbsp soy sauce, garlic, and ginger for 15 minutes.",
				"Heat vegetable oil in a wok or large pan over high heat. Stir-fry the beef until nearly cooked through, then remove from the pan.",
				"In the same pan, add a little more oil if needed, and stir-fry the broccoli, bell peppers, carrots, and snap peas for 3-4 minutes until crisp-tender.",
				"Return the beef to the pan, add the remaining 1 tbsp soy sauce and sesame oil, and stir-fry for another 2 minutes.",
				"Pour in the cornstarch slurry to thicken the sauce slightly, stirring well.",
				"Serve hot over a bed of cooked rice.",
			},
		},
		{
			Name:   "Strawberry Cheesecake",
			Author: "James Croft",
			Ingredients: []string{
				"For the crust:",
				"1 ½ cups graham cracker crumbs (vegan)",
				"5 tbsp melted coconut oil",
				"2 tbsp maple syrup",
				"For the filling:",
				"3 cups raw cashews (soaked overnight, drained)",
				"1 cup coconut cream",
				"¾ cup maple syrup",
				"¼ cup lemon juice",
				"1 tsp vanilla extract",
				"For the topping:",
				"2 cups fresh strawberries, sliced",
				"2 tbsp strawberry jam",
			},
			Steps: []string{
				"Preheat your oven to 350°F (175°C).",
				"For the crust, mix graham cracker crumbs, melted coconut oil, and maple syrup. Press firmly into the bottom of a springform pan.",
				"Bake the crust for 8-10 minutes, then let cool.",
				"For the filling, blend soaked cashews, coconut cream, maple syrup, lemon juice, and vanilla extract until completely smooth.",
				"Pour the filling over the cooled crust and spread evenly.",
				"Bake in a water bath for 25-30 minutes, then cool to room temperature before refrigerating for at least 4 hours.",
				"For the topping, mix sliced strawberries with strawberry jam and arrange them on top of the cheesecake before serving.",
			},
		},
		{
			Name:   "Vegan Banana Bread",
			Author: "James Croft",
			Ingredients: []string{
				"3 overripe bananas, mashed",
				"1/3 cup melted coconut oil",
				"1 cup brown sugar",
				"1 tsp vanilla extract",
				"1 tsp baking soda",
				"Pinch of salt",
				"1 ½ cups all-purpose flour",
				"1/2 cup chopped walnuts (optional)",
			},
			Steps: []string{
				"Preheat your oven to 350°F (175°C) and grease a 9x5-inch loaf pan.",
				"In a large bowl, mix mashed bananas with melted coconut oil, brown sugar, and vanilla extract.",
				"Sprinkle in the baking soda and salt, stirring to combine.",
				"Gently fold in the flour and walnuts until just incorporated.",
				"Pour the batter into the loaf pan and smooth the top.",
				"Bake for 50-60 minutes or until a toothpick inserted in the center comes out clean.",
				"Allow the bread to cool in the pan for 10 minutes, then transfer to a wire rack.",
			},
		},
		{
			Name:   "Chicken Tikka Masala",
			Author: "James Croft",
			Ingredients: []string{
				"For the chicken marinade:",
				"1 lb boneless, skinless chicken thighs, cut into bite-sized pieces",
				"1 cup plain yogurt",
				"2 tbsp lemon juice",
				"2 tsp ground cumin",
				"2 tsp paprika",
				"1 tsp ground cinnamon",
				"1 tsp ground cayenne pepper",
				"1 tsp ground black pepper",
				"1 tsp salt",
				"For the sauce:",
				"2 tbsp vegetable oil",
				"1 large onion, finely chopped",
				"3 cloves garlic, minced",
				"1 tbsp fresh ginger, grated",
				"1 tbsp garam masala",
				"1 tsp ground turmeric",
				"1 tsp ground coriander",
				"1 tsp ground cumin",
				"1 can (400g) crushed tomatoes",
				"1 cup coconut milk",
				"Salt and pepper to taste",
				"Fresh cilantro (for garnish)",
			},
			Steps: []string{
				"In a large bowl, combine chicken pieces with yogurt, lemon juice, and spices for the marinade. Cover and refrigerate for at least 1 hour.",
				"Heat vegetable oil in a large pan over medium heat. Add chopped onion, garlic, and ginger; sauté until soft and fragrant.",
				"Add garam masala, turmeric, coriander, and cumin to the pan; cook for 1-2 minutes to toast the spices.",
				"Stir in crushed tomatoes and coconut milk, then season with salt and pepper.",
				"Add marinated chicken to the sauce and simmer for 20-30 minutes until the chicken is cooked through.",
				"Serve the Chicken Tikka Masala over rice, garnished with fresh cilantro.",
			},
		},
		{
			Name:   "Vegetable Fried Rice",
			Author: "James Croft",
			Ingredients: []string{
				"2 cups cooked rice, chilled",
				"1 cup mixed vegetables (peas, carrots, corn, etc.)",
				"2 eggs, beaten",
				"2 cloves garlic, minced",
				"2 tbsp soy sauce",
				"1 tbsp sesame oil",
				"1 tbsp vegetable oil",
				"Salt and pepper to taste",
				"Green onions (for garnish)",
			},
			Steps: []string{
				"Heat vegetable oil in a large pan or wok over medium heat. Add minced garlic and cook until fragrant.",
				"Push the garlic to the side of the pan and pour in the beaten eggs. Scramble the eggs until cooked through.",
				"Add mixed vegetables to the pan and stir-fry until heated through.",
				"Stir in the chilled rice, breaking up any clumps with a spatula.",
				"Drizzle soy sauce and sesame oil over the rice, then season with salt and pepper.",
				"Continue to stir-fry the rice until everything is well combined and heated through.",
				"Garnish with chopped green onions before serving.",
			},
		},
		{
			Name:   "Classic Chocolate Chip Cookies",
			Author: "James Croft",
			Ingredients: []string{
				"1 cup unsalted butter, softened",
				"1 cup brown sugar",
				"½ cup granulated sugar",
				"2 large eggs",
				"1 tsp vanilla extract",
				"2 ½ cups all-purpose flour",
				"1 tsp baking soda",
				"½ tsp salt",
				"2 cups chocolate chips",
			},
			Steps: []string{
				"Preheat your oven to 375°F (190°C) and line a baking sheet with parchment paper.",
				"In a large bowl, cream together butter, brown sugar, and granulated sugar until light and fluffy.",
				"Beat in eggs one at a time, then stir in vanilla extract.",
				"In a separate bowl, whisk together flour, baking soda, and salt.",
				"Gradually add the dry ingredients to the wet ingredients, mixing until just combined.",
				"Fold in the chocolate chips.",
				"Drop spoonfuls of dough onto the prepared baking sheet and bake for 8-10 minutes or until golden brown.",
				"Let the cookies cool on the baking sheet for a few minutes before transferring to a wire rack to cool completely.",
			},
		},
		{
			Name:   "Scrambled Eggs with Spinach and Feta on Toast",
			Author: "James Croft",
			Ingredients: []string{
				"4 large eggs",
				"1 cup baby spinach",
				"½ cup crumbled feta cheese",
				"4 slices seeded bread",
				"2 tbsp butter",
				"Salt and pepper to taste",
			},
			Steps: []string{
				"In a bowl, whisk together eggs, baby spinach, and crumbled feta cheese.",
				"Heat butter in a non-stick pan over medium heat. Pour in the egg mixture and cook, stirring occasionally, until the eggs are scrambled and cooked through.",
				"Toast the bread slices until golden brown and crispy.",
				"Divide the scrambled eggs between the toast slices and season with salt and pepper before serving.",
			},
		},
	}
}
